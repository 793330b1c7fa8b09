package telemetry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swagpaypal/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{Enabled: false, ServiceName: "paypal-pos"}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewMeterProvider_None(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Exporter: telemetry.ExporterNone}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Nil(t, mp.Handler())
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewMeterProvider_UnknownExporter(t *testing.T) {
	_, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Exporter: "statsd"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewMeterProvider_Prometheus(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Exporter:    telemetry.ExporterPrometheus,
		ServiceName: "paypal-pos",
	}, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = mp.Shutdown(ctx) }()

	metrics, err := telemetry.NewPOSMetrics(mp.Meter("test"))
	require.NoError(t, err)
	metrics.WebhookReceived(ctx, "InventoryBalanceChanged", "dispatched")

	handler := mp.Handler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "pos_webhooks_received_total")
	assert.Contains(t, string(body), `outcome="dispatched"`)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestPOSMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewPOSMetrics(provider.Meter("test"))
	require.NoError(t, err)

	channelID := uuid.New()
	metrics.InventorySynced(ctx, channelID, 3, false, 2*time.Second)
	metrics.InventorySynced(ctx, channelID, 0, true, time.Second)
	metrics.LocalStockChanged(ctx, channelID, 2)
	metrics.WebhookReceived(ctx, "InventoryBalanceChanged", "duplicate")

	data := collect(t, reader)

	runs := data["pos_inventory_sync_runs_total"].(metricdata.Sum[int64])
	require.Len(t, runs.DataPoints, 2)

	changed := data["pos_inventory_changed_products_total"].(metricdata.Sum[int64])
	byDirection := map[string]int64{}
	for _, dp := range changed.DataPoints {
		direction, _ := dp.Attributes.Value(attribute.Key("direction"))
		byDirection[direction.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"remote": 3, "local": 2}, byDirection)

	duration := data["pos_inventory_sync_duration_seconds"].(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)

	webhooks := data["pos_webhooks_received_total"].(metricdata.Sum[int64])
	require.Len(t, webhooks.DataPoints, 1)
	assert.Equal(t, int64(1), webhooks.DataPoints[0].Value)
}

func TestLoggerProvider_DisabledCoreIsNop(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(previous)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "inventory_sync", "run",
		attribute.String(telemetry.SpanAttrSalesChannelID, "abc"))
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.RecordError(span, io.ErrUnexpectedEOF)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "inventory_sync.run", ended[0].Name())
	assert.Equal(t, "Error", ended[0].Status().Code.String())
	assert.Contains(t, ended[0].Attributes(), attribute.String(telemetry.SpanAttrSalesChannelID, "abc"))

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}

func TestLoggerProvider_NilCoreTeesCleanly(t *testing.T) {
	var lp *telemetry.LoggerProvider
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(zapcore.NewTee(core, lp.Core(zapcore.InfoLevel)))

	logger.Info("still logged")
	logger.Debug("filtered")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "still logged", logs.All()[0].Message)
}
