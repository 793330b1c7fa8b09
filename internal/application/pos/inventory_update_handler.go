package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InventoryUpdateHandler applies InventoryBalanceChanged webhooks to local stock
type InventoryUpdateHandler struct {
	contexts  *InventoryContextFactory
	products  pos.ProductRepository
	snapshots pos.InventorySnapshotRepository
	updater   *LocalUpdater
	lock      channelLock
	lockWait  time.Duration
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
}

// InventoryUpdateHandlerConfig contains the dependencies of InventoryUpdateHandler
type InventoryUpdateHandlerConfig struct {
	Contexts  *InventoryContextFactory
	Products  pos.ProductRepository
	Snapshots pos.InventorySnapshotRepository
	// Locker is shared with InventorySyncService; nil disables locking
	Locker    shared.Locker
	LockTTL   time.Duration
	LockWait  time.Duration
	Publisher shared.EventPublisher
	Metrics   Metrics
	Logger    *zap.Logger
}

// NewInventoryUpdateHandler creates the handler
func NewInventoryUpdateHandler(cfg InventoryUpdateHandlerConfig) *InventoryUpdateHandler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &InventoryUpdateHandler{
		contexts:  cfg.Contexts,
		products:  cfg.Products,
		snapshots: cfg.Snapshots,
		updater:   NewLocalUpdater(cfg.Products, cfg.Logger),
		lock:      newChannelLock(cfg.Locker, cfg.LockTTL, cfg.Logger),
		lockWait:  cfg.LockWait,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// EventName implements WebhookHandler
func (h *InventoryUpdateHandler) EventName() string {
	return pos.EventInventoryBalanceChanged
}

// NewPayload implements WebhookHandler
func (h *InventoryUpdateHandler) NewPayload() pos.Payload {
	return &pos.InventoryBalanceChangedPayload{}
}

// Execute implements WebhookHandler. While a sync run holds the channel it waits
// up to LockWait and then fails with pos.ErrSyncInProgress, leaving the delivery
// to be retried.
func (h *InventoryUpdateHandler) Execute(ctx context.Context, payload pos.Payload, channel *pos.SalesChannel) error {
	p, ok := payload.(*pos.InventoryBalanceChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", payload, h.EventName())
	}

	unlock, err := h.lock.acquire(ctx, channel.ID, h.lockWait)
	if err != nil {
		return err
	}
	defer unlock()

	invCtx, err := h.contexts.Build(ctx, channel)
	if err != nil {
		return fmt.Errorf("build inventory context: %w", err)
	}

	ids := h.addStoreBalances(invCtx, p.BalanceAfter)
	if len(ids) == 0 {
		return nil
	}

	products, err := h.products.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	changed, err := h.updater.UpdateLocal(ctx, products, invCtx)
	// stock already changed must be recorded even if a later product failed
	if serr := h.saveSnapshot(ctx, channel.ID, products, invCtx); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}

	h.metrics.LocalStockChanged(ctx, channel.ID, len(changed))

	deltas := make([]pos.ProductStockDelta, 0, len(changed))
	for _, product := range changed {
		deltas = append(deltas, pos.ProductStockDelta{ProductID: product.ID, Change: product.StockChange().Amount()})
	}
	if h.publisher != nil {
		if perr := h.publisher.Publish(ctx, pos.NewLocalInventoryUpdatedEvent(channel.ID, deltas)); perr != nil {
			logger.For(ctx, h.logger).Warn("Failed to publish local inventory event", zap.Error(perr))
		}
	}
	return nil
}

// addStoreBalances records balances at the store location and returns the
// local product IDs they may belong to
func (h *InventoryUpdateHandler) addStoreBalances(invCtx *pos.InventoryContext, balances []pos.Balance) []uuid.UUID {
	store := invCtx.StoreUUID()
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID

	add := func(remote string) {
		id, err := pos.ParseRemoteUUID(remote)
		if err != nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, b := range balances {
		if b.LocationUUID != store {
			continue
		}
		invCtx.AddRemoteInventory(pos.Variant{
			LocationUUID: b.LocationUUID,
			LocationType: pos.LocationTypeStore,
			ProductUUID:  b.ProductUUID,
			VariantUUID:  b.VariantUUID,
			Balance:      b.Balance,
		})
		add(b.VariantUUID)
		add(b.ProductUUID)
	}
	return ids
}

// saveSnapshot records the balance exchanged for every product the webhook touched
func (h *InventoryUpdateHandler) saveSnapshot(ctx context.Context, channelID uuid.UUID, products pos.ProductCollection, invCtx *pos.InventoryContext) error {
	stock := make(map[uuid.UUID]int, len(products))
	for _, product := range products {
		if s, ok := invCtx.LocalStock(product.ID); ok {
			stock[product.ID] = s
		}
	}
	if len(stock) == 0 {
		return nil
	}
	if err := h.snapshots.Save(ctx, channelID, stock); err != nil {
		return fmt.Errorf("save inventory snapshot: %w", err)
	}
	return nil
}

var _ WebhookHandler = (*InventoryUpdateHandler)(nil)
