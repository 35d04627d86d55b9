package trade

import (
	"context"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its customer and products loaded.
	// Returns shared.ErrNotFound when no order exists.
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindAll finds all orders matching the query criteria, ordered and paginated
	FindAll(ctx context.Context, query shared.ListQuery) ([]Order, error)

	// Count counts orders matching the query criteria
	Count(ctx context.Context, query shared.ListQuery) (int64, error)

	// FindPlacedSince finds orders with order_date >= since, newest first
	FindPlacedSince(ctx context.Context, since time.Time) ([]Order, error)

	// Create inserts the order, its product associations and its total
	Create(ctx context.Context, order *Order) error

	// Summarize aggregates the number of customers, orders and total revenue
	Summarize(ctx context.Context) (*Summary, error)
}

// Summary is a store-wide aggregate of customers, orders and revenue
type Summary struct {
	CustomerCount int64
	OrderCount    int64
	Revenue       decimal.Decimal
}
