package pos

import (
	"context"
	"errors"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// RemoteUpdater pushes local stock changes to iZettle in a single bulk request
type RemoteUpdater struct {
	inventory  pos.InventoryResource
	calculator RemoteCalculator
	logger     *zap.Logger
}

// RemoteUpdaterOption configures a RemoteUpdater
type RemoteUpdaterOption func(*RemoteUpdater)

// WithCalculator replaces the default StockDiffCalculator
func WithCalculator(c RemoteCalculator) RemoteUpdaterOption {
	return func(u *RemoteUpdater) {
		if c != nil {
			u.calculator = c
		}
	}
}

// NewRemoteUpdater creates a remote updater
func NewRemoteUpdater(inventory pos.InventoryResource, log *zap.Logger, opts ...RemoteUpdaterOption) *RemoteUpdater {
	if log == nil {
		log = zap.NewNop()
	}
	u := &RemoteUpdater{inventory: inventory, calculator: StockDiffCalculator{}, logger: log}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UpdateRemote sends one bulk change for every product whose stock differs remotely.
// The changed products carry their StockChange. A rejected request is logged,
// recorded on invCtx and never retried; the changed products are still returned
// without an error. Any other failure is returned.
func (u *RemoteUpdater) UpdateRemote(ctx context.Context, products pos.ProductCollection, invCtx *pos.InventoryContext) (pos.ProductCollection, error) {
	changes := &pos.BulkChanges{}
	changed := pos.ProductCollection{}

	for _, product := range products {
		if product.HasChildren() {
			continue
		}
		pc := u.calculator.CalculateRemoteChange(product, invCtx)
		if pc == nil {
			continue
		}
		changes.AddProductChange(pc)
		product.AttachStockChange(pos.NewStockChange(u.calculator.ChangeAmount(product, invCtx)))
		changed = append(changed, product)
	}

	if changes.Len() == 0 {
		return changed, nil
	}

	changes.ReturnBalanceForLocationUUID = invCtx.StoreUUID()

	log := logger.For(ctx, u.logger).With(zap.String("sales_channel_id", invCtx.SalesChannel().ID.String()))

	status, err := u.inventory.ChangeInventoryBulk(ctx, invCtx.SalesChannel().APIKey(), changes)
	if errors.Is(err, pos.ErrRemoteAPI) {
		log.Error("Inventory sync error", zap.Int("products", len(changed)), zap.Error(err))
		invCtx.RecordRemoteFailure(err)
		return changed, nil
	}
	if err != nil {
		return changed, err
	}

	for _, product := range changed {
		sc := product.StockChange()
		if sc == nil {
			continue
		}
		log.Info("Changed remote inventory",
			zap.String("product", product.DisplayName()),
			zap.String("product_id", product.ID.String()),
			zap.Int("change", sc.Amount()),
		)
	}

	if status == nil || len(status.Variants) == 0 {
		return changed, nil
	}
	for _, variant := range status.Variants {
		invCtx.AddRemoteInventory(variant)
	}
	return changed, nil
}
