package telemetry

import (
	"context"
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics turns domain events and job runs into counters and
// histograms. It is subscribed to the event bus and observes the job
// scheduler.
type BusinessMetrics struct {
	customersCreated  *Counter
	productsCreated   *Counter
	ordersCreated     *Counter
	orderValue        *Histogram
	productsRestocked *Counter
	jobRuns           *Counter
	jobDuration       *Histogram
}

// NewBusinessMetrics creates the business instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	counters := []struct {
		dst         **Counter
		name, descr string
	}{
		{&bm.customersCreated, "crm_customers_created_total", "Customers created"},
		{&bm.productsCreated, "crm_products_created_total", "Products created"},
		{&bm.ordersCreated, "crm_orders_created_total", "Orders placed"},
		{&bm.productsRestocked, "crm_products_restocked_total", "Products raised to the restock level"},
		{&bm.jobRuns, "crm_job_runs_total", "Periodic job attempts by outcome"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.descr, "1"); err != nil {
			return nil, err
		}
	}

	bm.orderValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "crm_order_value",
		Description: "Total amount of placed orders",
		Unit:        "{currency}",
		Boundaries:  OrderValueBuckets,
	})
	if err != nil {
		return nil, err
	}
	bm.jobDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "crm_job_duration_seconds",
		Description: "Duration of periodic job attempts",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		partner.EventTypeCustomerCreated,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductsRestocked,
		trade.EventTypeOrderCreated,
	}
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	typeAttr := AttrEventType.String(event.EventType())
	switch e := event.(type) {
	case *partner.CustomerCreatedEvent:
		bm.customersCreated.Inc(ctx, typeAttr)
	case *catalog.ProductCreatedEvent:
		bm.productsCreated.Inc(ctx, typeAttr)
	case *catalog.ProductsRestockedEvent:
		bm.productsRestocked.Add(ctx, int64(len(e.ProductIDs)), metric.WithAttributes(typeAttr))
	case *trade.OrderCreatedEvent:
		bm.ordersCreated.Inc(ctx, typeAttr)
		bm.orderValue.Observe(ctx, e.TotalAmount.InexactFloat64())
	}
	return nil
}

// JobFinished records one job attempt
func (bm *BusinessMetrics) JobFinished(ctx context.Context, task string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := []attribute.KeyValue{AttrJobName.String(task), AttrJobOutcome.String(outcome)}
	bm.jobRuns.Inc(ctx, attrs...)
	bm.jobDuration.RecordDuration(ctx, duration, attrs...)
}
