package models

// PaymentMethodModel is the persistence model for payment methods.
type PaymentMethodModel struct {
	BaseModel
	HandlerIdentifier string `gorm:"type:varchar(255);not null;index"`
	Name              string `gorm:"type:varchar(255);not null"`
	Active            bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ShippingMethodModel is the persistence model for shipping methods.
type ShippingMethodModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(255);not null"`
	Active bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// All returns every model managed by this package, in dependency order.
func All() []any {
	return []any{
		&SalesChannelTypeModel{},
		&SalesChannelModel{},
		&POSSalesChannelModel{},
		&ProductModel{},
		&ProductVisibilityModel{},
		&InventorySnapshotModel{},
		&RunModel{},
		&RunLogModel{},
		&PaymentMethodModel{},
		&ShippingMethodModel{},
	}
}
