package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRunRepository implements pos.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Create inserts a started run
func (r *GormRunRepository) Create(ctx context.Context, run *pos.Run) error {
	return r.db.WithContext(ctx).Create(models.RunModelFromDomain(run)).Error
}

// Finish stores the finish time and abort flag of a run
func (r *GormRunRepository) Finish(ctx context.Context, run *pos.Run) error {
	result := r.db.WithContext(ctx).
		Model(&models.RunModel{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"finished_at": run.FinishedAt,
			"aborted":     run.Aborted,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddLogs inserts run log lines in one batch
func (r *GormRunRepository) AddLogs(ctx context.Context, logs ...*pos.RunLog) error {
	if len(logs) == 0 {
		return nil
	}
	rows := make([]*models.RunLogModel, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, models.RunLogModelFromDomain(l))
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// FindLogsByProduct returns the newest log lines of a product
func (r *GormRunRepository) FindLogsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*pos.RunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.RunLogModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]*pos.RunLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].ToDomain())
	}
	return logs, nil
}
