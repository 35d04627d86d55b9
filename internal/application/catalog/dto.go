package catalog

import (
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// A nil Stock defaults to zero; a nil Price is reported as missing.
type CreateProductRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// RestockRequest optionally overrides the configured restock level
type RestockRequest struct {
	Level *int `json:"level" binding:"omitempty,min=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	LowStock  bool            `json:"low_stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateProductResult is the outcome of a product creation
type CreateProductResult struct {
	Product *ProductResponse `json:"product"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors"`
}

// Succeeded reports whether the product was created
func (r *CreateProductResult) Succeeded() bool {
	return r.Product != nil
}

// RestockResult is the outcome of a low-stock restock run.
// Products holds the updated products with their new stock level.
type RestockResult struct {
	Products []ProductResponse `json:"products"`
	Level    int               `json:"level"`
	Message  string            `json:"message"`
	Errors   []string          `json:"errors"`
}

// Succeeded reports whether the restock run completed
func (r *RestockResult) Succeeded() bool {
	return len(r.Errors) == 0
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		LowStock:  p.IsLowStock(),
		CreatedAt: p.CreatedAt,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
