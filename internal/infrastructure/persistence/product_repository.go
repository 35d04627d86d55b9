package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/persistence/filter"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db    *gorm.DB
	clock Clock
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, opts ...RepositoryOption) *GormProductRepository {
	o := applyRepositoryOptions(opts)
	return &GormProductRepository{db: db, clock: o.clock}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds products by IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return models.ProductsToDomain(productModels), nil
}

// FindAll finds all products matching the query
func (r *GormProductRepository) FindAll(ctx context.Context, query shared.ListQuery) ([]catalog.Product, error) {
	query = query.Normalize()
	var productModels []models.ProductModel
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), query)
	db = productFilters.ApplyOrder(db, query.OrderBy)
	if err := db.Offset(query.Offset()).Limit(query.PageSize).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return models.ProductsToDomain(productModels), nil
}

// Count counts products matching the query
func (r *GormProductRepository) Count(ctx context.Context, query shared.ListQuery) (int64, error) {
	var count int64
	db := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), query)
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBelowStock finds products with stock below threshold
func (r *GormProductRepository) FindBelowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("name ASC").Order("id ASC").
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}
	return models.ProductsToDomain(productModels), nil
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = model.ID
	product.CreatedAt = model.CreatedAt
	return nil
}

// UpdateStock persists the stock column of each product
func (r *GormProductRepository) UpdateStock(ctx context.Context, products []catalog.Product) error {
	for i := range products {
		result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
			Where("id = ?", products[i].ID).
			Update("stock", products[i].Stock)
		if result.Error != nil {
			return fmt.Errorf("update stock of product %d: %w", products[i].ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

func (r *GormProductRepository) applyFilter(db *gorm.DB, query shared.ListQuery) *gorm.DB {
	return productFilters.Apply(db, query.Criteria, filter.Env{Now: r.clock()})
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
