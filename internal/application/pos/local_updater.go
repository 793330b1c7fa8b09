package pos

import (
	"context"
	"fmt"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LocalUpdater applies iZettle balances to local stock
type LocalUpdater struct {
	products pos.ProductRepository
	logger   *zap.Logger
}

// NewLocalUpdater creates a local updater
func NewLocalUpdater(products pos.ProductRepository, log *zap.Logger) *LocalUpdater {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalUpdater{products: products, logger: log}
}

// UpdateLocal changes the stock of every product whose remote balance moved away
// from the last exchanged value and records the remote balance in the context
// snapshot, changed or not. Without a snapshot the product's available stock is
// taken as the last exchanged value, as that is what a sync pushes.
func (u *LocalUpdater) UpdateLocal(ctx context.Context, products pos.ProductCollection, invCtx *pos.InventoryContext) (pos.ProductCollection, error) {
	changed := pos.ProductCollection{}
	log := logger.For(ctx, u.logger)

	for _, product := range products {
		if product.HasChildren() {
			continue
		}
		remote, ok := invCtx.RemoteBalanceOf(product)
		if !ok {
			continue
		}
		local, ok := invCtx.LocalStock(product.ID)
		if !ok {
			local = product.AvailableStock
		}
		change := remote - local
		if change == 0 {
			invCtx.SetLocalStock(product.ID, remote)
			continue
		}

		if err := u.products.ChangeStock(ctx, product.ID, change); err != nil {
			return changed, fmt.Errorf("change stock of product %s: %w", product.ID, err)
		}
		invCtx.SetLocalStock(product.ID, remote)
		product.AttachStockChange(pos.NewStockChange(change))
		changed = append(changed, product)

		log.Info("Changed local inventory",
			zap.String("product", product.DisplayName()),
			zap.String("product_id", product.ID.String()),
			zap.Int("change", change),
		)
	}
	return changed, nil
}
