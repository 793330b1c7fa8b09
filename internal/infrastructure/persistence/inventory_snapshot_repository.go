package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventorySnapshotRepository implements pos.InventorySnapshotRepository using GORM
type GormInventorySnapshotRepository struct {
	db *gorm.DB
}

// NewGormInventorySnapshotRepository creates a new GormInventorySnapshotRepository
func NewGormInventorySnapshotRepository(db *gorm.DB) *GormInventorySnapshotRepository {
	return &GormInventorySnapshotRepository{db: db}
}

// Load returns the stored stock per product for a channel
func (r *GormInventorySnapshotRepository) Load(ctx context.Context, salesChannelID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []models.InventorySnapshotModel
	if err := r.db.WithContext(ctx).
		Where("sales_channel_id = ?", salesChannelID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	stock := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		stock[row.ProductID] = row.Stock
	}
	return stock, nil
}

// Save upserts the given stock values. Products not in stock keep their row.
func (r *GormInventorySnapshotRepository) Save(ctx context.Context, salesChannelID uuid.UUID, stock map[uuid.UUID]int) error {
	if len(stock) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.InventorySnapshotModel, 0, len(stock))
	for productID, value := range stock {
		rows = append(rows, models.InventorySnapshotModel{
			SalesChannelID: salesChannelID,
			ProductID:      productID,
			Stock:          value,
			UpdatedAt:      now,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sales_channel_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "updated_at"}),
		}).
		Create(&rows).Error
}
