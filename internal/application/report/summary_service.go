package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SummaryResponse is the store-wide customer, order and revenue summary
type SummaryResponse struct {
	CustomerCount int64           `json:"customer_count"`
	OrderCount    int64           `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// Line renders the summary as "<n> customers, <m> orders, <r> revenue"
// with revenue fixed to two decimals
func (r *SummaryResponse) Line() string {
	return fmt.Sprintf("%d customers, %d orders, %s revenue",
		r.CustomerCount, r.OrderCount, r.Revenue.StringFixed(2))
}

// SummaryService aggregates the data behind the periodic CRM report
type SummaryService struct {
	orderRepo trade.OrderRepository
	now       func() time.Time
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(orderRepo trade.OrderRepository) *SummaryService {
	return &SummaryService{
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

// Summary returns the current totals
func (s *SummaryService) Summary(ctx context.Context) (*SummaryResponse, error) {
	summary, err := s.orderRepo.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}
	return &SummaryResponse{
		CustomerCount: summary.CustomerCount,
		OrderCount:    summary.OrderCount,
		Revenue:       summary.Revenue,
		GeneratedAt:   s.now().UTC(),
	}, nil
}
