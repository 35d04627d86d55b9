package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.Meter("crm-test"))
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestBusinessMetrics_Handle(t *testing.T) {
	ctx := context.Background()
	bm, reader := newTestMetrics(t)

	customer := &partner.Customer{Name: "Ann", Email: "ann@example.com"}
	customer.ID = 1
	products := []catalog.Product{{Name: "Cable"}, {Name: "Adapter"}}
	order := &trade.Order{CustomerID: 1, TotalAmount: decimal.RequireFromString("1025.49")}

	require.NoError(t, bm.Handle(ctx, partner.NewCustomerCreatedEvent(customer)))
	require.NoError(t, bm.Handle(ctx, partner.NewCustomerCreatedEvent(customer)))
	require.NoError(t, bm.Handle(ctx, catalog.NewProductsRestockedEvent(products, 100)))
	require.NoError(t, bm.Handle(ctx, trade.NewOrderCreatedEvent(order)))

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["crm_customers_created_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["crm_products_restocked_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["crm_orders_created_total"]))

	hist, ok := metrics["crm_order_value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 1025.49, hist.DataPoints[0].Sum, 0.001)
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, _ := newTestMetrics(t)

	assert.ElementsMatch(t, []string{
		partner.EventTypeCustomerCreated,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductsRestocked,
		trade.EventTypeOrderCreated,
	}, bm.EventTypes())
}

func TestBusinessMetrics_JobFinished(t *testing.T) {
	ctx := context.Background()
	bm, reader := newTestMetrics(t)

	bm.JobFinished(ctx, "heartbeat", 20*time.Millisecond, nil)
	bm.JobFinished(ctx, "heartbeat", 30*time.Millisecond, errors.New("boom"))

	metrics := collect(t, reader)
	runs, ok := metrics["crm_job_runs_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, runs.DataPoints, 2)
	assert.Equal(t, int64(2), sumOf(t, metrics["crm_job_runs_total"]))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("crm"))
	assert.False(t, tp.EnableSpanProfiles())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("crm"))
	assert.NoError(t, mp.Shutdown(ctx))
}
