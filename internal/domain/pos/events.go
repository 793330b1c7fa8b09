package pos

import (
	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/shared"
)

// Event types
const (
	EventTypeRemoteInventoryUpdated = "pos.inventory.remote_updated"
	EventTypeLocalInventoryUpdated  = "pos.inventory.local_updated"
	EventTypeWebhookRegistered      = "pos.webhook.registered"
	EventTypeWebhookUnregistered    = "pos.webhook.unregistered"
)

// ProductStockDelta is one product's change inside an inventory event
type ProductStockDelta struct {
	ProductID uuid.UUID `json:"product_id"`
	Change    int       `json:"change"`
}

// InventoryUpdatedEvent is published after stock was pushed to or pulled from iZettle
type InventoryUpdatedEvent struct {
	shared.EventHeader
	SalesChannelID uuid.UUID           `json:"sales_channel_id"`
	Changes        []ProductStockDelta `json:"changes"`
	RemoteFailed   bool                `json:"remote_failed,omitempty"`
}

// NewRemoteInventoryUpdatedEvent describes a remote update run
func NewRemoteInventoryUpdatedEvent(channelID uuid.UUID, changed ProductCollection, remoteFailed bool) *InventoryUpdatedEvent {
	e := &InventoryUpdatedEvent{
		EventHeader:    shared.NewEventHeader(EventTypeRemoteInventoryUpdated, channelID),
		SalesChannelID: channelID,
		RemoteFailed:   remoteFailed,
	}
	for _, p := range changed {
		if sc := p.StockChange(); sc != nil {
			e.Changes = append(e.Changes, ProductStockDelta{ProductID: p.ID, Change: sc.Amount()})
		}
	}
	return e
}

// NewLocalInventoryUpdatedEvent describes stock applied locally from iZettle balances
func NewLocalInventoryUpdatedEvent(channelID uuid.UUID, changes []ProductStockDelta) *InventoryUpdatedEvent {
	return &InventoryUpdatedEvent{
		EventHeader:    shared.NewEventHeader(EventTypeLocalInventoryUpdated, channelID),
		SalesChannelID: channelID,
		Changes:        changes,
	}
}

// WebhookRegistrationEvent is published when a channel's webhook subscription changes
type WebhookRegistrationEvent struct {
	shared.EventHeader
	SalesChannelID   uuid.UUID `json:"sales_channel_id"`
	SubscriptionUUID string    `json:"subscription_uuid"`
}

// NewWebhookRegistrationEvent creates a registered or unregistered event
func NewWebhookRegistrationEvent(eventType string, channel *SalesChannel) *WebhookRegistrationEvent {
	return &WebhookRegistrationEvent{
		EventHeader:      shared.NewEventHeader(eventType, channel.ID),
		SalesChannelID:   channel.ID,
		SubscriptionUUID: channel.SubscriptionUUID().String(),
	}
}
