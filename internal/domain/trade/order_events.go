package trade

import (
	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// EventTypeOrderCreated is published when a new order is created
const EventTypeOrderCreated = "order.created"

// OrderCreatedEvent is published when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uint            `json:"order_id"`
	CustomerID  uint            `json:"customer_id"`
	ProductIDs  []uint          `json:"product_ids"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		ProductIDs:      order.ProductIDs(),
		TotalAmount:     order.TotalAmount,
	}
}
