package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SyncResult summarises one inventory synchronisation run
type SyncResult struct {
	RunID          uuid.UUID               `json:"run_id"`
	SalesChannelID uuid.UUID               `json:"sales_channel_id"`
	Changes        []pos.ProductStockDelta `json:"changes"`
	RemoteFailed   bool                    `json:"remote_failed"`
	Error          string                  `json:"error,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
}

// InventorySyncService pushes the local stock of POS channels to iZettle
type InventorySyncService struct {
	salesChannels pos.SalesChannelRepository
	products      pos.ProductRepository
	snapshots     pos.InventorySnapshotRepository
	runs          pos.RunRepository
	contexts      *InventoryContextFactory
	updater       *RemoteUpdater
	lock          channelLock
	publisher     shared.EventPublisher
	metrics       Metrics
	logger        *zap.Logger
}

// InventorySyncServiceConfig contains the dependencies of InventorySyncService
type InventorySyncServiceConfig struct {
	SalesChannels pos.SalesChannelRepository
	Products      pos.ProductRepository
	Snapshots     pos.InventorySnapshotRepository
	Runs          pos.RunRepository
	Inventory     pos.InventoryResource
	// Calculator defaults to StockDiffCalculator
	Calculator RemoteCalculator
	// Locker keeps runs on the same channel from overlapping; nil disables it
	Locker    shared.Locker
	LockTTL   time.Duration
	Publisher shared.EventPublisher
	Metrics   Metrics
	Logger    *zap.Logger
}

// NewInventorySyncService creates the service
func NewInventorySyncService(cfg InventorySyncServiceConfig) *InventorySyncService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &InventorySyncService{
		salesChannels: cfg.SalesChannels,
		products:      cfg.Products,
		snapshots:     cfg.Snapshots,
		runs:          cfg.Runs,
		contexts:      NewInventoryContextFactory(cfg.Inventory, cfg.Snapshots),
		updater:       NewRemoteUpdater(cfg.Inventory, cfg.Logger, WithCalculator(cfg.Calculator)),
		lock:          newChannelLock(cfg.Locker, cfg.LockTTL, cfg.Logger),
		publisher:     cfg.Publisher,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
}

// SyncInventory runs one inventory synchronisation for a POS channel.
// A failing bulk request is recorded on the run and in the result, not returned.
// It returns pos.ErrSyncInProgress while another run or webhook holds the channel.
func (s *InventorySyncService) SyncInventory(ctx context.Context, salesChannelID uuid.UUID) (*SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory_sync", "SyncInventory",
		attribute.String(telemetry.SpanAttrSalesChannelID, salesChannelID.String()))
	defer span.End()

	result, err := s.syncInventory(ctx, salesChannelID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.SpanAttrChanged, len(result.Changes)))
	return result, nil
}

func (s *InventorySyncService) syncInventory(ctx context.Context, salesChannelID uuid.UUID) (*SyncResult, error) {
	channel, err := s.findPOSChannel(ctx, salesChannelID)
	if err != nil {
		return nil, err
	}

	ctx, log := logger.WithSalesChannelID(ctx, logger.For(ctx, s.logger), salesChannelID.String())

	unlock, err := s.lock.acquire(ctx, channel.ID, 0)
	if err != nil {
		return nil, err
	}
	defer unlock()

	run := pos.NewRun(channel.ID, pos.TaskInventory)
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	result := &SyncResult{RunID: run.ID, SalesChannelID: channel.ID, StartedAt: run.StartedAt}

	outcome, err := s.sync(ctx, channel)
	if err != nil {
		run.Log(pos.LogLevelError, err.Error(), nil)
		run.Abort()
		s.finishRun(ctx, run)
		s.metrics.InventorySynced(ctx, channel.ID, 0, true, time.Since(run.StartedAt))
		return nil, err
	}

	changed := outcome.changed
	if outcome.remoteErr != nil {
		result.RemoteFailed = true
		result.Error = outcome.remoteErr.Error()
		run.Log(pos.LogLevelError, "Inventory sync error: "+outcome.remoteErr.Error(), nil)
	} else {
		for _, product := range changed {
			amount := product.StockChange().Amount()
			run.Log(pos.LogLevelInfo, fmt.Sprintf("Changed remote inventory of %s by %d", product.DisplayName(), amount), product)
			result.Changes = append(result.Changes, pos.ProductStockDelta{ProductID: product.ID, Change: amount})
		}
	}

	s.finishRun(ctx, run)
	result.FinishedAt = *run.FinishedAt

	s.metrics.InventorySynced(ctx, channel.ID, len(result.Changes), result.RemoteFailed, result.FinishedAt.Sub(result.StartedAt))
	log.Info("Inventory sync finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("changed", len(result.Changes)),
		zap.Bool("remote_failed", result.RemoteFailed),
	)

	if s.publisher != nil && (len(changed) > 0 || result.RemoteFailed) {
		event := pos.NewRemoteInventoryUpdatedEvent(channel.ID, changed, result.RemoteFailed)
		if perr := s.publisher.Publish(ctx, event); perr != nil {
			log.Warn("Failed to publish remote inventory event", zap.Error(perr))
		}
	}
	return result, nil
}

type syncOutcome struct {
	changed   pos.ProductCollection
	remoteErr error
}

// sync reports a failed bulk request in the outcome; the returned error aborts the run
func (s *InventorySyncService) sync(ctx context.Context, channel *pos.SalesChannel) (*syncOutcome, error) {
	invCtx, err := s.contexts.BuildWithRemoteInventory(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("build inventory context: %w", err)
	}

	products, err := s.products.FindBySalesChannel(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	changed, err := s.updater.UpdateRemote(ctx, products, invCtx)
	if err != nil {
		return nil, fmt.Errorf("update remote inventory: %w", err)
	}
	remoteErr := invCtx.RemoteFailure()

	if stock := exchangedStock(products, changed, invCtx, remoteErr == nil); len(stock) > 0 {
		if err := s.snapshots.Save(ctx, channel.ID, stock); err != nil {
			return nil, fmt.Errorf("save inventory snapshot: %w", err)
		}
	}
	return &syncOutcome{changed: changed, remoteErr: remoteErr}, nil
}

// exchangedStock is the stock iZettle now agrees on for every leaf product:
// the pushed value for changed products when the push succeeded, and the
// unchanged remote balance for products that were already in sync.
func exchangedStock(products, changed pos.ProductCollection, invCtx *pos.InventoryContext, pushed bool) map[uuid.UUID]int {
	stock := make(map[uuid.UUID]int, len(products))
	for _, product := range products {
		if product.HasChildren() {
			continue
		}
		if changed.Get(product.ID) != nil {
			if pushed {
				stock[product.ID] = product.AvailableStock
			}
			continue
		}
		if remote, ok := invCtx.RemoteBalanceOf(product); ok {
			stock[product.ID] = remote
		}
	}
	return stock
}

func (s *InventorySyncService) finishRun(ctx context.Context, run *pos.Run) {
	if run.FinishedAt == nil {
		run.Finish()
	}
	log := logger.For(ctx, s.logger)
	if err := s.runs.AddLogs(ctx, run.Logs...); err != nil {
		log.Error("Failed to write run logs", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	if err := s.runs.Finish(ctx, run); err != nil {
		log.Error("Failed to finish run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (s *InventorySyncService) findPOSChannel(ctx context.Context, id uuid.UUID) (*pos.SalesChannel, error) {
	channel, err := s.salesChannels.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, pos.ErrSalesChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	if !channel.IsPOS() {
		return nil, pos.ErrSalesChannelNotFound
	}
	return channel, nil
}
