package pos

import (
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// RemoteCalculator derives the iZettle inventory change needed to match local stock.
// CalculateRemoteChange returns nil when the product needs no change.
type RemoteCalculator interface {
	ChangeAmount(product *pos.Product, invCtx *pos.InventoryContext) int
	CalculateRemoteChange(product *pos.Product, invCtx *pos.InventoryContext) *pos.ProductChange
}

// StockDiffCalculator moves the remote balance to the local available stock
type StockDiffCalculator struct{}

// ChangeAmount is the difference between local available stock and the known remote balance.
// Products without a known remote balance count as 0 remotely.
func (StockDiffCalculator) ChangeAmount(product *pos.Product, invCtx *pos.InventoryContext) int {
	remote, _ := invCtx.RemoteBalanceOf(product)
	return product.AvailableStock - remote
}

// CalculateRemoteChange returns nil when nothing has to change. Stock increases
// move from the supplier to the store, decreases move from the store to the bin.
func (c StockDiffCalculator) CalculateRemoteChange(product *pos.Product, invCtx *pos.InventoryContext) *pos.ProductChange {
	amount := c.ChangeAmount(product, invCtx)
	if amount == 0 {
		return nil
	}

	productUUID, variantUUID := product.RemoteUUIDs()
	locations := invCtx.Locations()

	change := pos.VariantChange{
		ProductUUID:      productUUID,
		VariantUUID:      variantUUID,
		FromLocationUUID: locations.Supplier,
		ToLocationUUID:   locations.Store,
		Change:           amount,
	}
	if amount < 0 {
		change.FromLocationUUID = locations.Store
		change.ToLocationUUID = locations.Bin
		change.Change = -amount
	}

	pc := pos.NewProductChange(productUUID)
	pc.AddVariantChange(change)
	return pc
}

var _ RemoteCalculator = StockDiffCalculator{}
