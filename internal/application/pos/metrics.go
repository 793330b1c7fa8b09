package pos

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Webhook outcomes reported to Metrics
const (
	OutcomeDispatched = "dispatched"
	OutcomeTest       = "test"
	OutcomeDuplicate  = "duplicate"
	OutcomeSkipped    = "skipped"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

// Metrics records POS integration measurements
type Metrics interface {
	WebhookReceived(ctx context.Context, eventName, outcome string)
	InventorySynced(ctx context.Context, salesChannelID uuid.UUID, changed int, remoteFailed bool, duration time.Duration)
	LocalStockChanged(ctx context.Context, salesChannelID uuid.UUID, changed int)
}

type nopMetrics struct{}

func (nopMetrics) WebhookReceived(context.Context, string, string) {}

func (nopMetrics) InventorySynced(context.Context, uuid.UUID, int, bool, time.Duration) {}

func (nopMetrics) LocalStockChanged(context.Context, uuid.UUID, int) {}
