package trade

import (
	"time"

	"github.com/erp/crm/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Order DTOs
// =============================================================================

// CreateOrderRequest represents a request to place an order.
// A nil OrderDate means the order is placed now.
type CreateOrderRequest struct {
	CustomerID uint       `json:"customer_id"`
	ProductIDs []uint     `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date"`
}

// OrderCustomerResponse is the customer embedded in an order response
type OrderCustomerResponse struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// OrderProductResponse is a product embedded in an order response
type OrderProductResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          uint                   `json:"id"`
	CustomerID  uint                   `json:"customer_id"`
	Customer    *OrderCustomerResponse `json:"customer,omitempty"`
	Products    []OrderProductResponse `json:"products"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	OrderDate   time.Time              `json:"order_date"`
	CreatedAt   time.Time              `json:"created_at"`
}

// CreateOrderResult is the outcome of an order placement
type CreateOrderResult struct {
	Order   *OrderResponse `json:"order"`
	Message string         `json:"message"`
	Errors  []string       `json:"errors"`
}

// Succeeded reports whether the order was created
func (r *CreateOrderResult) Succeeded() bool {
	return r.Order != nil
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Products:    make([]OrderProductResponse, len(o.Products)),
		TotalAmount: o.TotalAmount,
		OrderDate:   o.OrderDate,
		CreatedAt:   o.CreatedAt,
	}
	if o.Customer != nil {
		resp.Customer = &OrderCustomerResponse{
			ID:    o.Customer.ID,
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		}
	}
	for i, p := range o.Products {
		resp.Products[i] = OrderProductResponse{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	return resp
}

// ToOrderResponses converts a slice of domain Orders to responses
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
