package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrEvent          = attribute.Key("event")
	AttrOutcome        = attribute.Key("outcome")
	AttrSalesChannelID = attribute.Key("sales_channel_id")
	AttrRemoteFailed   = attribute.Key("remote_failed")
	AttrDirection      = attribute.Key("direction")
)

// POSMetrics records webhook and inventory synchronisation metrics
type POSMetrics struct {
	webhooks        *Counter
	syncRuns        *Counter
	syncDuration    *Histogram
	changedProducts *Counter
}

// NewPOSMetrics creates the instruments on meter
func NewPOSMetrics(meter metric.Meter) (*POSMetrics, error) {
	webhooks, err := NewCounter(meter, "pos_webhooks_received_total", "Inbound iZettle webhooks by outcome", "{webhook}")
	if err != nil {
		return nil, err
	}
	syncRuns, err := NewCounter(meter, "pos_inventory_sync_runs_total", "Inventory synchronisation runs", "{run}")
	if err != nil {
		return nil, err
	}
	syncDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "pos_inventory_sync_duration_seconds",
		Description: "Duration of inventory synchronisation runs",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	changed, err := NewCounter(meter, "pos_inventory_changed_products_total", "Products whose stock was changed", "{product}")
	if err != nil {
		return nil, err
	}
	return &POSMetrics{
		webhooks:        webhooks,
		syncRuns:        syncRuns,
		syncDuration:    syncDuration,
		changedProducts: changed,
	}, nil
}

func (m *POSMetrics) WebhookReceived(ctx context.Context, eventName, outcome string) {
	m.webhooks.Inc(ctx, AttrEvent.String(eventName), AttrOutcome.String(outcome))
}

func (m *POSMetrics) InventorySynced(ctx context.Context, salesChannelID uuid.UUID, changed int, remoteFailed bool, duration time.Duration) {
	channel := AttrSalesChannelID.String(salesChannelID.String())
	m.syncRuns.Inc(ctx, channel, AttrRemoteFailed.String(strconv.FormatBool(remoteFailed)))
	m.syncDuration.RecordDuration(ctx, duration, channel)
	if changed > 0 {
		m.changedProducts.Add(ctx, int64(changed), channel, AttrDirection.String("remote"))
	}
}

func (m *POSMetrics) LocalStockChanged(ctx context.Context, salesChannelID uuid.UUID, changed int) {
	m.changedProducts.Add(ctx, int64(changed),
		AttrSalesChannelID.String(salesChannelID.String()),
		AttrDirection.String("local"),
	)
}
