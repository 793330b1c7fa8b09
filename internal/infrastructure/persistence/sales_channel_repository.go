package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalesChannelRepository implements pos.SalesChannelRepository using GORM
type GormSalesChannelRepository struct {
	db *gorm.DB
}

// NewGormSalesChannelRepository creates a new GormSalesChannelRepository
func NewGormSalesChannelRepository(db *gorm.DB) *GormSalesChannelRepository {
	return &GormSalesChannelRepository{db: db}
}

// FindByID finds a sales channel and its POS settings
func (r *GormSalesChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*pos.SalesChannel, error) {
	var model models.SalesChannelModel
	if err := r.db.WithContext(ctx).Preload("POS").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByType finds all sales channels of a type
func (r *GormSalesChannelRepository) FindByType(ctx context.Context, typeID uuid.UUID) ([]*pos.SalesChannel, error) {
	return r.find(r.db.WithContext(ctx).Where("type_id = ?", typeID))
}

// FindActivePOS finds active POS sales channels that have an API key
func (r *GormSalesChannelRepository) FindActivePOS(ctx context.Context) ([]*pos.SalesChannel, error) {
	channels, err := r.find(r.db.WithContext(ctx).Where("type_id = ? AND active = ?", pos.SalesChannelTypePOS, true))
	if err != nil {
		return nil, err
	}
	result := channels[:0]
	for _, ch := range channels {
		if ch.IsPOS() && ch.APIKey() != "" {
			result = append(result, ch)
		}
	}
	return result, nil
}

// SaveSigningKey stores or clears the webhook signing key of a POS channel
func (r *GormSalesChannelRepository) SaveSigningKey(ctx context.Context, id uuid.UUID, signingKey *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.POSSalesChannelModel{}).
		Where("sales_channel_id = ?", id).
		Update("webhook_signing_key", signingKey)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSalesChannelRepository) find(query *gorm.DB) ([]*pos.SalesChannel, error) {
	var rows []models.SalesChannelModel
	if err := query.Preload("POS").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	channels := make([]*pos.SalesChannel, 0, len(rows))
	for i := range rows {
		channels = append(channels, rows[i].ToDomain())
	}
	return channels, nil
}
