package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceCategory is a named price bucket
type PriceCategory string

const (
	PriceCategoryBudget  PriceCategory = "budget"  // < 100
	PriceCategoryMid     PriceCategory = "mid"     // [100, 500)
	PriceCategoryPremium PriceCategory = "premium" // [500, 1000]
	PriceCategoryLuxury  PriceCategory = "luxury"  // > 1000
)

// categoryAliases maps order value names onto the same buckets
var categoryAliases = map[string]PriceCategory{
	"budget":  PriceCategoryBudget,
	"small":   PriceCategoryBudget,
	"mid":     PriceCategoryMid,
	"medium":  PriceCategoryMid,
	"premium": PriceCategoryPremium,
	"large":   PriceCategoryPremium,
	"luxury":  PriceCategoryLuxury,
	"xlarge":  PriceCategoryLuxury,
}

// Bound is one end of a price range
type Bound struct {
	Value     decimal.Decimal
	Inclusive bool
}

// PriceRange is a range with optional lower and upper bounds
type PriceRange struct {
	Lower *Bound
	Upper *Bound
}

var (
	hundred  = decimal.NewFromInt(100)
	fiveHund = decimal.NewFromInt(500)
	thousand = decimal.NewFromInt(1000)
)

// ParsePriceCategory resolves a category name, case-insensitively
func ParsePriceCategory(name string) (PriceCategory, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Range returns the price range covered by the category
func (c PriceCategory) Range() PriceRange {
	switch c {
	case PriceCategoryBudget:
		return PriceRange{Upper: &Bound{Value: hundred}}
	case PriceCategoryMid:
		return PriceRange{
			Lower: &Bound{Value: hundred, Inclusive: true},
			Upper: &Bound{Value: fiveHund},
		}
	case PriceCategoryPremium:
		return PriceRange{
			Lower: &Bound{Value: fiveHund, Inclusive: true},
			Upper: &Bound{Value: thousand, Inclusive: true},
		}
	case PriceCategoryLuxury:
		return PriceRange{Lower: &Bound{Value: thousand}}
	default:
		return PriceRange{}
	}
}

// Contains reports whether amount falls in the range
func (r PriceRange) Contains(amount decimal.Decimal) bool {
	if r.Lower != nil {
		if r.Lower.Inclusive && amount.LessThan(r.Lower.Value) {
			return false
		}
		if !r.Lower.Inclusive && amount.LessThanOrEqual(r.Lower.Value) {
			return false
		}
	}
	if r.Upper != nil {
		if r.Upper.Inclusive && amount.GreaterThan(r.Upper.Value) {
			return false
		}
		if !r.Upper.Inclusive && amount.GreaterThanOrEqual(r.Upper.Value) {
			return false
		}
	}
	return true
}
