package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ChannelSource lists the channels due for synchronisation
type ChannelSource interface {
	FindActivePOS(ctx context.Context) ([]*pos.SalesChannel, error)
}

// Syncer runs one inventory synchronisation for a channel
type Syncer interface {
	SyncRun(ctx context.Context, salesChannelID uuid.UUID) error
}

// SyncerFunc adapts a function to Syncer
type SyncerFunc func(ctx context.Context, salesChannelID uuid.UUID) error

func (f SyncerFunc) SyncRun(ctx context.Context, salesChannelID uuid.UUID) error {
	return f(ctx, salesChannelID)
}

// Config holds scheduler configuration
type Config struct {
	Enabled        bool
	Interval       time.Duration
	RunTimeout     time.Duration
	MaxConcurrency int
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Interval:       10 * time.Minute,
		RunTimeout:     5 * time.Minute,
		MaxConcurrency: 2,
	}
}

func (c Config) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

// TickResult summarises one pass over the active channels.
// Skipped counts channels whose previous run was still in progress.
type TickResult struct {
	Channels  int
	Succeeded int
	Failed    int
	Skipped   int
}

// InventoryScheduler periodically synchronises the inventory of every active POS channel
type InventoryScheduler struct {
	config   Config
	channels ChannelSource
	syncer   Syncer
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	tickMu    sync.Mutex
}

// NewInventoryScheduler creates a new scheduler instance
func NewInventoryScheduler(config Config, channels ChannelSource, syncer Syncer, logger *zap.Logger) (*InventoryScheduler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryScheduler{
		config:   config,
		channels: channels,
		syncer:   syncer,
		logger:   logger,
	}, nil
}

// Start starts the periodic loop. It is a no-op when disabled or already running.
func (s *InventoryScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Inventory scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Inventory scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
		zap.Int("max_concurrency", s.config.MaxConcurrency),
	)
	return nil
}

// Stop cancels in-flight runs and waits for the loop to exit or ctx to expire
func (s *InventoryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Inventory scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Inventory scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *InventoryScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *InventoryScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Inventory sync pass failed", zap.Error(err))
			}
		}
	}
}

// Tick synchronises every active POS channel once, at most MaxConcurrency at a time.
// A failing channel does not stop the others. Overlapping ticks are serialised.
func (s *InventoryScheduler) Tick(ctx context.Context) (TickResult, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	channels, err := s.channels.FindActivePOS(ctx)
	if err != nil {
		return TickResult{}, fmt.Errorf("find active POS channels: %w", err)
	}

	result := TickResult{Channels: len(channels)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for _, channel := range channels {
		channelID := channel.ID
		g.Go(func() error {
			runCtx, cancel := context.WithTimeout(gctx, s.config.RunTimeout)
			defer cancel()

			err := s.syncer.SyncRun(runCtx, channelID)

			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, pos.ErrSyncInProgress) {
				result.Skipped++
				s.logger.Info("Inventory sync still running, skipped",
					zap.String("sales_channel_id", channelID.String()),
				)
				return nil
			}
			if err != nil {
				result.Failed++
				s.logger.Warn("Scheduled inventory sync failed",
					zap.String("sales_channel_id", channelID.String()),
					zap.Error(err),
				)
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Inventory sync pass finished",
		zap.Int("channels", result.Channels),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, ctx.Err()
}
