package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/crm/internal/application/trade"
	"go.uber.org/zap"
)

// OrderRemindersName is the task name of the order reminder job
const OrderRemindersName = "order_reminders"

// RecentOrderLister lists orders placed after a point in time
type RecentOrderLister interface {
	ListPlacedSince(ctx context.Context, since time.Time) ([]trade.OrderResponse, error)
}

// OrderRemindersJob logs every order placed within the lookback window
// together with the customer to remind
type OrderRemindersJob struct {
	orders   RecentOrderLister
	lookback time.Duration
	sink     Sink
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderRemindersJob creates a reminder job over the last lookback period
func NewOrderRemindersJob(orders RecentOrderLister, lookback time.Duration, sink Sink, logger *zap.Logger) *OrderRemindersJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderRemindersJob{
		orders:   orders,
		lookback: lookback,
		sink:     sink,
		logger:   logger.Named("jobs").With(zap.String("job", OrderRemindersName)),
		now:      time.Now,
	}
}

// Name implements scheduler.Task
func (j *OrderRemindersJob) Name() string {
	return OrderRemindersName
}

// Run appends one line per recent order followed by a total line
func (j *OrderRemindersJob) Run(ctx context.Context) error {
	now := j.now()
	ts := "[" + now.Format(logLayout) + "]"

	orders, err := j.orders.ListPlacedSince(ctx, now.Add(-j.lookback))
	if err != nil {
		j.logger.Error("failed to list recent orders", zap.Error(err))
		return j.sink.WriteLines(fmt.Sprintf("%s ERROR: %v", ts, err))
	}

	if len(orders) == 0 {
		days := int(j.lookback.Hours() / 24)
		return j.sink.WriteLines(fmt.Sprintf("%s No pending orders found from the last %d days.", ts, days))
	}

	lines := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		name, email := "Unknown customer", "N/A"
		if o.Customer != nil {
			name, email = o.Customer.Name, o.Customer.Email
		}
		lines = append(lines, fmt.Sprintf("%s Order ID: %d | Customer: %s (%s) | Order Date: %s",
			ts, o.ID, name, email, o.OrderDate.Format(time.RFC3339)))
	}
	lines = append(lines, fmt.Sprintf("%s Total orders to process: %d", ts, len(orders)))

	j.logger.Info("order reminders processed", zap.Int("orders", len(orders)))
	return j.sink.WriteLines(lines...)
}
