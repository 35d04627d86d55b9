package catalog

import (
	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type for product events
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated    = "product.created"
	EventTypeProductsRestocked = "products.restocked"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Price:           product.Price,
		Stock:           product.Stock,
	}
}

// ProductsRestockedEvent is published after a low-stock restock run
type ProductsRestockedEvent struct {
	shared.BaseDomainEvent
	ProductIDs []uint `json:"product_ids"`
	Level      int    `json:"level"`
}

// NewProductsRestockedEvent creates a new ProductsRestockedEvent
func NewProductsRestockedEvent(products []Product, level int) *ProductsRestockedEvent {
	ids := make([]uint, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return &ProductsRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductsRestocked, AggregateTypeProduct, 0),
		ProductIDs:      ids,
		Level:           level,
	}
}
