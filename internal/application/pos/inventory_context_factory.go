package pos

import (
	"context"

	"github.com/swagpaypal/backend/internal/domain/pos"
)

// InventoryContextFactory assembles the per-run inventory context of a channel
type InventoryContextFactory struct {
	inventory pos.InventoryResource
	snapshots pos.InventorySnapshotRepository
}

// NewInventoryContextFactory creates a factory
func NewInventoryContextFactory(inventory pos.InventoryResource, snapshots pos.InventorySnapshotRepository) *InventoryContextFactory {
	return &InventoryContextFactory{inventory: inventory, snapshots: snapshots}
}

// Build loads the organization's locations and the local snapshot of channel
func (f *InventoryContextFactory) Build(ctx context.Context, channel *pos.SalesChannel) (*pos.InventoryContext, error) {
	list, err := f.inventory.FetchLocations(ctx, channel.APIKey())
	if err != nil {
		return nil, err
	}
	local, err := f.snapshots.Load(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	return pos.NewInventoryContext(channel, pos.LocationsFromList(list), local), nil
}

// BuildWithRemoteInventory also loads the current balances at the store location
func (f *InventoryContextFactory) BuildWithRemoteInventory(ctx context.Context, channel *pos.SalesChannel) (*pos.InventoryContext, error) {
	invCtx, err := f.Build(ctx, channel)
	if err != nil {
		return nil, err
	}
	status, err := f.inventory.FetchInventory(ctx, channel.APIKey(), invCtx.StoreUUID())
	if err != nil {
		return nil, err
	}
	if status != nil {
		for _, variant := range status.Variants {
			invCtx.AddRemoteInventory(variant)
		}
	}
	return invCtx, nil
}
