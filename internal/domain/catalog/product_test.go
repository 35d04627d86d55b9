package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidateProductInput(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Laptop", Price: decPtr("999.99"), Stock: 5})
		assert.Empty(t, errs)
	})

	t.Run("zero stock is allowed", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Laptop", Price: decPtr("1"), Stock: 0})
		assert.Empty(t, errs)
	})

	t.Run("missing price", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Laptop"})
		assert.Equal(t, []string{"Price is required"}, errs)
	})

	t.Run("zero price is rejected", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Laptop", Price: decPtr("0")})
		assert.Equal(t, []string{"Price must be positive, got: 0"}, errs)
	})

	t.Run("accumulates every violation", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "  ", Price: decPtr("-5.5"), Stock: -1})
		require.Len(t, errs, 3)
		assert.Equal(t, "Product name is required and cannot be empty", errs[0])
		assert.Equal(t, "Price must be positive, got: -5.5", errs[1])
		assert.Equal(t, "Stock cannot be negative, got: -1", errs[2])
	})

	t.Run("overlong name", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: strings.Repeat("x", MaxNameLength+1), Price: decPtr("1")})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "cannot exceed")
	})

	t.Run("name length counts characters", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: strings.Repeat("键", MaxNameLength), Price: decPtr("1")})
		assert.Empty(t, errs)
	})

	t.Run("sub-cent price is rejected", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Sticker", Price: decPtr("0.004")})
		assert.Equal(t, []string{"Price cannot have more than 2 decimal places, got: 0.004"}, errs)
	})

	t.Run("extra decimal places are rejected", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Sticker", Price: decPtr("19.999")})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "more than 2 decimal places")
	})

	t.Run("trailing zeros are fine", func(t *testing.T) {
		assert.Empty(t, ValidateProductInput(ProductInput{Name: "Sticker", Price: decPtr("0.010")}))
	})

	t.Run("price above column range", func(t *testing.T) {
		errs := ValidateProductInput(ProductInput{Name: "Yacht", Price: decPtr("100000000"), Stock: -1})
		assert.Equal(t, []string{
			"Price cannot exceed 99999999.99, got: 100000000",
			"Stock cannot be negative, got: -1",
		}, errs)
		assert.Empty(t, ValidateProductInput(ProductInput{Name: "Yacht", Price: decPtr("99999999.99")}))
	})
}

func TestNewProduct(t *testing.T) {
	p := NewProduct(ProductInput{Name: "  Mouse ", Price: decPtr("19.999"), Stock: 3})

	assert.Equal(t, "Mouse", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, 3, p.Stock)
	assert.True(t, p.IsLowStock())
	assert.True(t, p.IsNew())
}

func TestProduct_Restock(t *testing.T) {
	p := NewProduct(ProductInput{Name: "Cable", Price: decPtr("2"), Stock: 1})

	require.NoError(t, p.Restock(50))
	assert.Equal(t, 50, p.Stock)
	assert.False(t, p.IsLowStock())

	assert.Error(t, p.Restock(-1))
	assert.Equal(t, 50, p.Stock)
}

func TestPriceCategory(t *testing.T) {
	tests := []struct {
		category string
		amount   string
		want     bool
	}{
		{"budget", "99.99", true},
		{"budget", "100", false},
		{"mid", "100", true},
		{"mid", "499.99", true},
		{"mid", "500", false},
		{"premium", "500", true},
		{"premium", "1000", true},
		{"premium", "1000.01", false},
		{"luxury", "1000", false},
		{"luxury", "1000.01", true},
		{"small", "10", true},
		{"xlarge", "5000", true},
		{"LARGE", "750", true},
	}

	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.amount, func(t *testing.T) {
			c, ok := ParsePriceCategory(tt.category)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Range().Contains(decimal.RequireFromString(tt.amount)))
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		_, ok := ParsePriceCategory("cheap")
		assert.False(t, ok)
	})
}
