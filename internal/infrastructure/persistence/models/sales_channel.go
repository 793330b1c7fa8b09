package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// SalesChannelModel is the persistence model for sales channels.
type SalesChannelModel struct {
	BaseModel
	Name   string    `gorm:"type:varchar(255);not null"`
	TypeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active bool      `gorm:"not null;default:true"`

	POS *POSSalesChannelModel `gorm:"foreignKey:SalesChannelID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesChannelModel) TableName() string {
	return "sales_channels"
}

// ToDomain converts the persistence model to a domain SalesChannel.
func (m *SalesChannelModel) ToDomain() *pos.SalesChannel {
	ch := &pos.SalesChannel{
		ID:     m.ID,
		Name:   m.Name,
		TypeID: m.TypeID,
		Active: m.Active,
	}
	if m.POS != nil {
		ch.POS = m.POS.ToDomain()
	}
	return ch
}

// POSSalesChannelModel holds the iZettle settings of a POS sales channel.
type POSSalesChannelModel struct {
	SalesChannelID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	APIKey            string    `gorm:"type:text;not null"`
	WebhookSigningKey *string   `gorm:"type:varchar(255)"`
	MediaDomain       string    `gorm:"type:varchar(255)"`
	ReplaceInventory  bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (POSSalesChannelModel) TableName() string {
	return "pos_sales_channels"
}

// ToDomain converts the persistence model to domain POSSettings.
func (m *POSSalesChannelModel) ToDomain() *pos.POSSettings {
	return &pos.POSSettings{
		APIKey:            m.APIKey,
		WebhookSigningKey: m.WebhookSigningKey,
		MediaDomain:       m.MediaDomain,
		ReplaceInventory:  m.ReplaceInventory,
	}
}

// SalesChannelTypeModel is the persistence model for sales channel types.
type SalesChannelTypeModel struct {
	BaseModel
	IconName     string `gorm:"type:varchar(255)"`
	Name         string `gorm:"type:varchar(255);not null"`
	Manufacturer string `gorm:"type:varchar(255)"`
	Description  string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SalesChannelTypeModel) TableName() string {
	return "sales_channel_types"
}

// SalesChannelTypeModelFromDomain creates a persistence model from a domain SalesChannelType.
func SalesChannelTypeModelFromDomain(t *pos.SalesChannelType) *SalesChannelTypeModel {
	return &SalesChannelTypeModel{
		BaseModel:    BaseModel{ID: t.ID},
		IconName:     t.IconName,
		Name:         t.Name,
		Manufacturer: t.Manufacturer,
		Description:  t.Description,
	}
}
