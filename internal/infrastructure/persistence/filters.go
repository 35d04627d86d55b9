package persistence

import (
	"fmt"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/infrastructure/persistence/filter"
	"gorm.io/gorm"
)

// Filter registries for each entity table. Each key maps to one predicate;
// see package filter for the composition rules.
var (
	customerFilters = newCustomerFilters()
	productFilters  = newProductFilters()
	orderFilters    = newOrderFilters()
)

var lowStockCondition = fmt.Sprintf("products.stock < %d", catalog.LowStockThreshold)

func newCustomerFilters() *filter.Registry {
	return filter.NewRegistry("customers").
		Register("name", filter.Contains("customers.name")).
		Register("email", filter.Contains("customers.email")).
		Register("name_exact", filter.Exact("customers.name")).
		Register("email_exact", filter.ExactFold("customers.email")).
		Register("phone_pattern", filter.StartsWith("customers.phone"), "phonePattern").
		Register("search", filter.AnyContains("customers.name", "customers.email")).
		Register("created_at_gte", filter.TimeCompare("customers.created_at", filter.OpGte), "createdAtGte").
		Register("created_at_lte", filter.TimeCompare("customers.created_at", filter.OpLte), "createdAtLte").
		Register("has_orders", filter.Bool(
			func(db *gorm.DB) *gorm.DB {
				return db.Where("EXISTS (SELECT 1 FROM orders WHERE orders.customer_id = customers.id)")
			},
			func(db *gorm.DB) *gorm.DB {
				return db.Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.customer_id = customers.id)")
			},
		), "hasOrders").
		Sortable("id").
		Sortable("name").
		Sortable("email").
		Sortable("created_at", "createdAt").
		DefaultOrder("-created_at")
}

func newProductFilters() *filter.Registry {
	return filter.NewRegistry("products").
		Register("name", filter.Contains("products.name")).
		Register("name_exact", filter.Exact("products.name")).
		Register("search", filter.Contains("products.name")).
		Register("price_gte", filter.DecimalCompare("products.price", filter.OpGte), "priceGte").
		Register("price_lte", filter.DecimalCompare("products.price", filter.OpLte), "priceLte").
		Register("stock", filter.IntCompare("products.stock", "=")).
		Register("stock_gte", filter.IntCompare("products.stock", filter.OpGte), "stockGte").
		Register("stock_lte", filter.IntCompare("products.stock", filter.OpLte), "stockLte").
		Register("low_stock", filter.Bool(
			func(db *gorm.DB) *gorm.DB { return db.Where(lowStockCondition) },
			nil,
		), "lowStock").
		Register("in_stock", filter.Bool(
			func(db *gorm.DB) *gorm.DB { return db.Where("products.stock > 0") },
			func(db *gorm.DB) *gorm.DB { return db.Where("products.stock = 0") },
		), "inStock").
		Register("price_category", filter.PriceCategory("products.price"), "priceCategory").
		Register("created_at_gte", filter.TimeCompare("products.created_at", filter.OpGte), "createdAtGte").
		Register("created_at_lte", filter.TimeCompare("products.created_at", filter.OpLte), "createdAtLte").
		Sortable("id").
		Sortable("name").
		Sortable("price").
		Sortable("stock").
		Sortable("created_at", "createdAt").
		DefaultOrder("name")
}

func newOrderFilters() *filter.Registry {
	return filter.NewRegistry("orders").
		Register("total_amount_gte", filter.DecimalCompare("orders.total_amount", filter.OpGte), "totalAmountGte").
		Register("total_amount_lte", filter.DecimalCompare("orders.total_amount", filter.OpLte), "totalAmountLte").
		Register("order_date_gte", filter.TimeCompare("orders.order_date", filter.OpGte), "orderDateGte").
		Register("order_date_lte", filter.TimeCompare("orders.order_date", filter.OpLte), "orderDateLte").
		Register("created_at_gte", filter.TimeCompare("orders.created_at", filter.OpGte), "createdAtGte").
		Register("created_at_lte", filter.TimeCompare("orders.created_at", filter.OpLte), "createdAtLte").
		Register("customer_name", customerSubquery(filter.Contains("customers.name")), "customerName").
		Register("customer_email", customerSubquery(filter.Contains("customers.email")), "customerEmail").
		Register("product_name", productSubquery(filter.Contains("products.name")), "productName").
		Register("product_id", productIDs(false), "productId").
		Register("product_ids", productIDs(true), "productIds").
		Register("date_range", filter.DateRange("orders.order_date"), "dateRange").
		Register("value_category", filter.PriceCategory("orders.total_amount"), "valueCategory").
		Sortable("id").
		Sortable("order_date", "orderDate").
		Sortable("total_amount", "totalAmount").
		Sortable("created_at", "createdAt").
		Sortable("customer_id", "customerId").
		DefaultOrder("-order_date")
}

// customerSubquery applies inner to customers and keeps orders owned by a match
func customerSubquery(inner filter.Predicate) filter.Predicate {
	return func(db *gorm.DB, value string, env filter.Env) (*gorm.DB, bool) {
		sub, ok := inner(db.Session(&gorm.Session{NewDB: true}).Table("customers").Select("customers.id"), value, env)
		if !ok {
			return db, false
		}
		return db.Where("orders.customer_id IN (?)", sub), true
	}
}

// productSubquery applies inner to products and keeps orders containing a
// match. Filtering by subquery yields each order once no matter how many of
// its products match.
func productSubquery(inner filter.Predicate) filter.Predicate {
	return func(db *gorm.DB, value string, env filter.Env) (*gorm.DB, bool) {
		base := db.Session(&gorm.Session{NewDB: true}).
			Table("order_products").
			Select("order_products.order_id").
			Joins("JOIN products ON products.id = order_products.product_id")
		sub, ok := inner(base, value, env)
		if !ok {
			return db, false
		}
		return db.Where("orders.id IN (?)", sub), true
	}
}

// productIDs keeps orders containing any of the given product IDs.
// With list=false the value must be a single ID.
func productIDs(list bool) filter.Predicate {
	return func(db *gorm.DB, value string, _ filter.Env) (*gorm.DB, bool) {
		ids, ok := filter.ParseIDList(value)
		if !ok || (!list && len(ids) != 1) {
			return db, false
		}
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("order_products").
			Select("order_products.order_id").
			Where("order_products.product_id IN ?", ids)
		return db.Where("orders.id IN (?)", sub), true
	}
}
