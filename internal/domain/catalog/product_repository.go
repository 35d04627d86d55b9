package catalog

import (
	"context"

	"github.com/erp/crm/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID.
	// Returns shared.ErrNotFound when no product exists.
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByIDs finds the products with the given IDs; missing IDs are simply absent
	FindByIDs(ctx context.Context, ids []uint) ([]Product, error)

	// FindAll finds all products matching the query criteria, ordered and paginated
	FindAll(ctx context.Context, query shared.ListQuery) ([]Product, error)

	// Count counts products matching the query criteria
	Count(ctx context.Context, query shared.ListQuery) (int64, error)

	// FindBelowStock finds all products whose stock is below threshold, ordered by name
	FindBelowStock(ctx context.Context, threshold int) ([]Product, error)

	// Create inserts a new product and assigns its ID
	Create(ctx context.Context, product *Product) error

	// UpdateStock persists the stock level of the given products
	UpdateStock(ctx context.Context, products []Product) error
}
