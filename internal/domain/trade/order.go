package trade

import (
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Order represents a customer order over one or more products.
// TotalAmount is derived from the associated products and is recomputed
// every time the association is replaced.
type Order struct {
	shared.BaseEntity
	CustomerID  uint
	Customer    *partner.Customer
	Products    []catalog.Product
	OrderDate   time.Time
	TotalAmount decimal.Decimal
}

// NewOrder creates an order for a customer. A zero orderDate defaults to
// now; any other date is stored in UTC.
func NewOrder(customer *partner.Customer, orderDate time.Time) *Order {
	now := time.Now().UTC()
	if orderDate.IsZero() {
		orderDate = now
	}
	orderDate = orderDate.UTC()
	return &Order{
		BaseEntity:  shared.BaseEntity{CreatedAt: now},
		CustomerID:  customer.ID,
		Customer:    customer,
		OrderDate:   orderDate,
		TotalAmount: decimal.Zero,
	}
}

// SetProducts replaces the product association and recomputes the total
func (o *Order) SetProducts(products []catalog.Product) {
	o.Products = append([]catalog.Product(nil), products...)
	o.TotalAmount = CalculateTotal(o.Products)
}

// ProductIDs returns the IDs of the associated products
func (o *Order) ProductIDs() []uint {
	ids := make([]uint, len(o.Products))
	for i := range o.Products {
		ids[i] = o.Products[i].ID
	}
	return ids
}

// CalculateTotal sums the prices of products
func CalculateTotal(products []catalog.Product) decimal.Decimal {
	total := decimal.Zero
	for i := range products {
		total = total.Add(products[i].Price)
	}
	return total
}
