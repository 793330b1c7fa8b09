package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentMethodRepository implements pos.PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindIDByHandler returns the ID of the payment method using handler, or nil
func (r *GormPaymentMethodRepository) FindIDByHandler(ctx context.Context, handler string) (*uuid.UUID, error) {
	var model models.PaymentMethodModel
	err := r.db.WithContext(ctx).
		Select("id").
		Where("handler_identifier = ?", handler).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.ID, nil
}

// SetActive toggles a payment method
func (r *GormPaymentMethodRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentMethodModel{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// Delete removes a payment method. Missing rows are ignored.
func (r *GormPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentMethodModel{}, "id = ?", id).Error
}

// GormShippingMethodRepository implements pos.ShippingMethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// Delete removes a shipping method. Missing rows are ignored.
func (r *GormShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ShippingMethodModel{}, "id = ?", id).Error
}

// GormSalesChannelTypeRepository implements pos.SalesChannelTypeRepository using GORM
type GormSalesChannelTypeRepository struct {
	db *gorm.DB
}

// NewGormSalesChannelTypeRepository creates a new GormSalesChannelTypeRepository
func NewGormSalesChannelTypeRepository(db *gorm.DB) *GormSalesChannelTypeRepository {
	return &GormSalesChannelTypeRepository{db: db}
}

// Upsert creates the type or refreshes its translated fields
func (r *GormSalesChannelTypeRepository) Upsert(ctx context.Context, t *pos.SalesChannelType) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"icon_name", "name", "manufacturer", "description", "updated_at"}),
		}).
		Create(models.SalesChannelTypeModelFromDomain(t)).Error
}

// Delete removes a sales channel type. Missing rows are ignored.
func (r *GormSalesChannelTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SalesChannelTypeModel{}, "id = ?", id).Error
}
