package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/persistence/filter"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db    *gorm.DB
	clock Clock
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB, opts ...RepositoryOption) *GormCustomerRepository {
	o := applyRepositoryOptions(opts)
	return &GormCustomerRepository{db: db, clock: o.clock}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uint) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the query
func (r *GormCustomerRepository) FindAll(ctx context.Context, query shared.ListQuery) ([]partner.Customer, error) {
	query = query.Normalize()
	var customerModels []models.CustomerModel
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), query)
	db = customerFilters.ApplyOrder(db, query.OrderBy)
	if err := db.Offset(query.Offset()).Limit(query.PageSize).Find(&customerModels).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the query
func (r *GormCustomerRepository) Count(ctx context.Context, query shared.ListQuery) (int64, error) {
	var count int64
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), query)
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a customer with the given email exists
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("email = ?", partner.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the customer inside its own transaction, or under a
// savepoint when already inside one, so a rejected insert leaves any
// surrounding transaction usable.
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return partner.ErrDuplicateEmail
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	customer.ID = model.ID
	customer.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormCustomerRepository) applyFilter(db *gorm.DB, query shared.ListQuery) *gorm.DB {
	return customerFilters.Apply(db, query.Criteria, filter.Env{Now: r.clock()})
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
