package pos

import (
	"context"

	"github.com/google/uuid"
)

// SalesChannelRepository reads sales channels and stores their webhook registration
type SalesChannelRepository interface {
	// FindByID returns shared.ErrNotFound when the channel does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*SalesChannel, error)
	FindByType(ctx context.Context, typeID uuid.UUID) ([]*SalesChannel, error)
	FindActivePOS(ctx context.Context) ([]*SalesChannel, error)
	SaveSigningKey(ctx context.Context, id uuid.UUID, signingKey *string) error
}

// ProductRepository reads products assigned to a channel and changes their stock
type ProductRepository interface {
	FindBySalesChannel(ctx context.Context, salesChannelID uuid.UUID) (ProductCollection, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (ProductCollection, error)
	// ChangeStock adds delta to stock and available stock
	ChangeStock(ctx context.Context, id uuid.UUID, delta int) error
}

// InventorySnapshotRepository persists the last stock exchanged with iZettle
type InventorySnapshotRepository interface {
	Load(ctx context.Context, salesChannelID uuid.UUID) (map[uuid.UUID]int, error)
	Save(ctx context.Context, salesChannelID uuid.UUID, stock map[uuid.UUID]int) error
}

// RunRepository persists synchronisation runs and their logs
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	Finish(ctx context.Context, run *Run) error
	AddLogs(ctx context.Context, logs ...*RunLog) error
	FindLogsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*RunLog, error)
}

// PaymentMethodRepository toggles and removes payment methods
type PaymentMethodRepository interface {
	// FindIDByHandler returns nil when no payment method uses handler
	FindIDByHandler(ctx context.Context, handler string) (*uuid.UUID, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShippingMethodRepository removes shipping methods
type ShippingMethodRepository interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// SalesChannelTypeRepository registers sales channel types
type SalesChannelTypeRepository interface {
	Upsert(ctx context.Context, t *SalesChannelType) error
	Delete(ctx context.Context, id uuid.UUID) error
}
