// Package transaction defines the unit-of-work boundary used by
// application services that write more than one row.
package transaction

import (
	"context"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/trade"
)

// Scope provides transactional access to the repositories.
// All repository operations made through the repositories passed to fn are
// committed together when fn returns nil and rolled back otherwise.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	Customers() partner.CustomerRepository
	Products() catalog.ProductRepository
	Orders() trade.OrderRepository
}

// NoOpScope is a scope that doesn't actually use transactions.
// This is useful for testing with mock repositories.
type NoOpScope struct {
	customers partner.CustomerRepository
	products  catalog.ProductRepository
	orders    trade.OrderRepository
}

// NewNoOpScope creates a NoOpScope with the given repositories.
func NewNoOpScope(
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	orders trade.OrderRepository,
) *NoOpScope {
	return &NoOpScope{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Customers returns the customer repository.
func (s *NoOpScope) Customers() partner.CustomerRepository {
	return s.customers
}

// Products returns the product repository.
func (s *NoOpScope) Products() catalog.ProductRepository {
	return s.products
}

// Orders returns the order repository.
func (s *NoOpScope) Orders() trade.OrderRepository {
	return s.orders
}

var (
	_ Scope        = (*NoOpScope)(nil)
	_ Repositories = (*NoOpScope)(nil)
)
