package pos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 10 * time.Minute
	lockPollInterval = 100 * time.Millisecond
)

// channelLock serialises inventory work on one sales channel across the
// manual sync, the scheduler and inventory webhooks. A nil locker disables it.
type channelLock struct {
	locker shared.Locker
	ttl    time.Duration
	logger *zap.Logger
}

func newChannelLock(locker shared.Locker, ttl time.Duration, log *zap.Logger) channelLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return channelLock{locker: locker, ttl: ttl, logger: log}
}

func inventoryLockKey(channelID uuid.UUID) string {
	return "inventory:" + channelID.String()
}

// acquire takes the channel lock, polling for up to wait while another holder
// owns it. It returns pos.ErrSyncInProgress when the lock stays taken.
func (l channelLock) acquire(ctx context.Context, channelID uuid.UUID, wait time.Duration) (func(), error) {
	if l.locker == nil {
		return func() {}, nil
	}
	key := inventoryLockKey(channelID)
	deadline := time.Now().Add(wait)

	for {
		release, ok, err := l.locker.TryLock(ctx, key, l.ttl)
		if err != nil {
			// losing the lock store must not stop inventory sync
			logger.For(ctx, l.logger).Warn("Inventory lock unavailable", zap.String("key", key), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				// the run may have outlived its caller's context
				if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
					logger.For(ctx, l.logger).Warn("Failed to release inventory lock", zap.String("key", key), zap.Error(rerr))
				}
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, pos.ErrSyncInProgress
		}

		timer := time.NewTimer(min(lockPollInterval, time.Until(deadline)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
