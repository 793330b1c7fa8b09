package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements pos.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySalesChannel returns products visible in a sales channel together with
// the variants of visible parents, ordered by product number.
func (r *GormProductRepository) FindBySalesChannel(ctx context.Context, salesChannelID uuid.UUID) (pos.ProductCollection, error) {
	visible := r.db.WithContext(ctx).
		Model(&models.ProductVisibilityModel{}).
		Select("product_id").
		Where("sales_channel_id = ?", salesChannelID)

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id IN (?) OR parent_id IN (?)", visible, visible).
		Order("product_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProductCollection(rows), nil
}

// FindByIDs returns the products with the given IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (pos.ProductCollection, error) {
	if len(ids) == 0 {
		return pos.ProductCollection{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("product_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProductCollection(rows), nil
}

// ChangeStock adds delta to stock and available stock in a single statement
func (r *GormProductRepository) ChangeStock(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":           gorm.Expr("stock + ?", delta),
			"available_stock": gorm.Expr("available_stock + ?", delta),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toProductCollection(rows []models.ProductModel) pos.ProductCollection {
	products := make(pos.ProductCollection, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].ToDomain())
	}
	return products
}
