package pos

import (
	"strings"

	"github.com/google/uuid"
)

type variantKey struct {
	productUUID string
	variantUUID string
}

func newVariantKey(productUUID, variantUUID string) variantKey {
	return variantKey{productUUID: strings.ToLower(productUUID), variantUUID: strings.ToLower(variantUUID)}
}

// InventoryContext carries the state of one synchronisation run for a sales channel.
// It is owned by a single run and not safe for concurrent use.
type InventoryContext struct {
	salesChannel *SalesChannel
	locations    Locations

	remoteOrder []variantKey
	remote      map[variantKey]Variant

	localStock map[uuid.UUID]int

	remoteFailure error
}

// NewInventoryContext creates a context for channel.
// localStock is the last stock known per product; it may be nil.
func NewInventoryContext(channel *SalesChannel, locations Locations, localStock map[uuid.UUID]int) *InventoryContext {
	stock := make(map[uuid.UUID]int, len(localStock))
	for id, s := range localStock {
		stock[id] = s
	}
	return &InventoryContext{
		salesChannel: channel,
		locations:    locations,
		remote:       make(map[variantKey]Variant),
		localStock:   stock,
	}
}

// SalesChannel returns the channel being synchronised
func (c *InventoryContext) SalesChannel() *SalesChannel {
	return c.salesChannel
}

// Locations returns the organization's location UUIDs
func (c *InventoryContext) Locations() Locations {
	return c.locations
}

// StoreUUID returns the store location UUID
func (c *InventoryContext) StoreUUID() string {
	return c.locations.Store
}

// AddRemoteInventory records a remote balance. A later entry for the same
// product and variant replaces the earlier one.
func (c *InventoryContext) AddRemoteInventory(v Variant) {
	key := newVariantKey(v.ProductUUID, v.VariantUUID)
	if _, ok := c.remote[key]; !ok {
		c.remoteOrder = append(c.remoteOrder, key)
	}
	c.remote[key] = v
}

// RemoteInventory returns the recorded remote balances in insertion order
func (c *InventoryContext) RemoteInventory() []Variant {
	out := make([]Variant, 0, len(c.remoteOrder))
	for _, k := range c.remoteOrder {
		out = append(out, c.remote[k])
	}
	return out
}

// RemoteBalance returns the remote balance of a product variant
func (c *InventoryContext) RemoteBalance(productUUID, variantUUID string) (int, bool) {
	v, ok := c.remote[newVariantKey(productUUID, variantUUID)]
	if !ok {
		return 0, false
	}
	return v.Balance.Int(), true
}

// RemoteBalanceOf returns the remote balance of product
func (c *InventoryContext) RemoteBalanceOf(product *Product) (int, bool) {
	productUUID, variantUUID := product.RemoteUUIDs()
	return c.RemoteBalance(productUUID, variantUUID)
}

// LocalStock returns the last stock recorded for a product
func (c *InventoryContext) LocalStock(productID uuid.UUID) (int, bool) {
	s, ok := c.localStock[productID]
	return s, ok
}

// SetLocalStock records the stock now known for a product
func (c *InventoryContext) SetLocalStock(productID uuid.UUID, stock int) {
	c.localStock[productID] = stock
}

// LocalSnapshot returns a copy of the recorded local stock
func (c *InventoryContext) LocalSnapshot() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(c.localStock))
	for id, s := range c.localStock {
		out[id] = s
	}
	return out
}

// RecordRemoteFailure marks the run's remote update as rejected by iZettle
func (c *InventoryContext) RecordRemoteFailure(err error) {
	c.remoteFailure = err
}

// RemoteFailure returns the error recorded by RecordRemoteFailure, if any
func (c *InventoryContext) RemoteFailure() error {
	return c.remoteFailure
}
