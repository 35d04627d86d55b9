package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/trade"
	"github.com/erp/crm/internal/infrastructure/persistence/filter"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db    *gorm.DB
	clock Clock
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, opts ...RepositoryOption) *GormOrderRepository {
	o := applyRepositoryOptions(opts)
	return &GormOrderRepository{db: db, clock: o.clock}
}

// FindByID finds an order by ID with customer and products
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*trade.Order, error) {
	var model models.OrderModel
	err := r.withAssociations(r.db.WithContext(ctx)).First(&model, "orders.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all orders matching the query
func (r *GormOrderRepository) FindAll(ctx context.Context, query shared.ListQuery) ([]trade.Order, error) {
	query = query.Normalize()
	var orderModels []models.OrderModel
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), query)
	db = orderFilters.ApplyOrder(db, query.OrderBy)
	db = r.withAssociations(db)
	if err := db.Offset(query.Offset()).Limit(query.PageSize).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(orderModels), nil
}

// Count counts orders matching the query
func (r *GormOrderRepository) Count(ctx context.Context, query shared.ListQuery) (int64, error) {
	var count int64
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), query)
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPlacedSince finds orders placed at or after since
func (r *GormOrderRepository) FindPlacedSince(ctx context.Context, since time.Time) ([]trade.Order, error) {
	var orderModels []models.OrderModel
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("orders.order_date >= ?", since).
		Order("orders.order_date DESC").Order("orders.id ASC").
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}
	return ordersToDomain(orderModels), nil
}

// Create inserts the order row, links its products and stores the total.
// The three writes run in one transaction, nested under the caller's
// transaction when there is one.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	model.TotalAmount = decimal.Zero

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if len(order.Products) > 0 {
			links := make([]map[string]any, len(order.Products))
			for i := range order.Products {
				links[i] = map[string]any{"order_id": model.ID, "product_id": order.Products[i].ID}
			}
			if err := tx.Table(models.OrderProductsTable).Create(&links).Error; err != nil {
				return fmt.Errorf("associate products: %w", err)
			}
		}

		total := trade.CalculateTotal(order.Products)
		if err := tx.Model(&models.OrderModel{}).Where("id = ?", model.ID).Update("total_amount", total).Error; err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		model.TotalAmount = total
		return nil
	})
	if err != nil {
		return err
	}

	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.TotalAmount = model.TotalAmount
	return nil
}

// Summarize aggregates customer count, order count and revenue
func (r *GormOrderRepository) Summarize(ctx context.Context) (*trade.Summary, error) {
	summary := &trade.Summary{Revenue: decimal.Zero}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.CustomerModel{}).Count(&summary.CustomerCount).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Model(&models.OrderModel{}).Count(&summary.OrderCount).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.OrderModel{}).Select("SUM(total_amount)").Row().Scan(&revenue); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if revenue.Valid {
		summary.Revenue = revenue.Decimal
	}
	return summary, nil
}

func (r *GormOrderRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.id ASC")
		})
}

func (r *GormOrderRepository) applyFilter(db *gorm.DB, query shared.ListQuery) *gorm.DB {
	return orderFilters.Apply(db, query.Criteria, filter.Env{Now: r.clock()})
}

func ordersToDomain(ms []models.OrderModel) []trade.Order {
	orders := make([]trade.Order, len(ms))
	for i := range ms {
		orders[i] = *ms[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
