package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a product counts as low on stock
const LowStockThreshold = 10

// MaxNameLength is the maximum product name length in characters
const MaxNameLength = 255

// PriceScale is the number of decimal places a price may carry
const PriceScale = 2

// MaxPrice is the largest price the products.price column holds
var MaxPrice = decimal.RequireFromString("99999999.99")

// Product represents a sellable product
type Product struct {
	shared.BaseEntity
	Name  string
	Price decimal.Decimal
	Stock int
}

// ProductInput is the raw data for a new product.
// A nil Price means the caller did not supply one.
type ProductInput struct {
	Name  string
	Price *decimal.Decimal
	Stock int
}

// ValidateProductInput collects every violation in the product input.
// It returns an empty slice when the input is valid.
func ValidateProductInput(input ProductInput) []string {
	errs := make([]string, 0)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, "Product name is required and cannot be empty")
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("Product name cannot exceed %d characters", MaxNameLength))
	}

	if input.Price == nil {
		errs = append(errs, "Price is required")
	} else {
		price := *input.Price
		switch {
		case !price.IsPositive():
			errs = append(errs, fmt.Sprintf("Price must be positive, got: %s", price.String()))
		case !price.Equal(price.Truncate(PriceScale)):
			errs = append(errs, fmt.Sprintf("Price cannot have more than %d decimal places, got: %s", PriceScale, price.String()))
		}
		if price.GreaterThan(MaxPrice) {
			errs = append(errs, fmt.Sprintf("Price cannot exceed %s, got: %s", MaxPrice.StringFixed(PriceScale), price.String()))
		}
	}

	if input.Stock < 0 {
		errs = append(errs, fmt.Sprintf("Stock cannot be negative, got: %d", input.Stock))
	}

	return errs
}

// NewProduct creates a product from validated input
func NewProduct(input ProductInput) *Product {
	price := decimal.Zero
	if input.Price != nil {
		price = input.Price.Round(PriceScale)
	}
	return &Product{
		BaseEntity: shared.BaseEntity{CreatedAt: time.Now().UTC()},
		Name:       strings.TrimSpace(input.Name),
		Price:      price,
		Stock:      input.Stock,
	}
}

// IsLowStock reports whether the product is below the low-stock threshold
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// Restock sets the stock to level
func (p *Product) Restock(level int) error {
	if level < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Restock level cannot be negative")
	}
	p.Stock = level
	return nil
}
