package catalog

import (
	"context"
	"fmt"

	"github.com/erp/crm/internal/application/transaction"
	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// Result messages
const (
	MsgValidationFailed = "Validation failed"
	MsgProductCreated   = "Product created successfully"
	MsgCreateFailed     = "Failed to create product"
	MsgRestockFailed    = "Failed to restock products"
)

// DefaultRestockLevel is the stock level low-stock products are raised to
const DefaultRestockLevel = 100

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	txScope        transaction.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, txScope transaction.Scope, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetEventPublisher sets the publisher notified about product changes
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates and persists a product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) *CreateProductResult {
	input := catalog.ProductInput{Name: req.Name, Price: req.Price}
	if req.Stock != nil {
		input.Stock = *req.Stock
	}

	if errs := catalog.ValidateProductInput(input); len(errs) > 0 {
		return &CreateProductResult{Message: MsgValidationFailed, Errors: errs}
	}

	product := catalog.NewProduct(input)
	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("product creation failed", zap.String("name", product.Name), zap.Error(err))
		return &CreateProductResult{Message: MsgCreateFailed, Errors: []string{err.Error()}}
	}

	s.publish(ctx, catalog.NewProductCreatedEvent(product))

	response := ToProductResponse(product)
	return &CreateProductResult{
		Product: &response,
		Message: MsgProductCreated,
		Errors:  []string{},
	}
}

// RestockLowStock raises every product below catalog.LowStockThreshold to
// level in a single transaction
func (s *ProductService) RestockLowStock(ctx context.Context, level int) *RestockResult {
	result := &RestockResult{Products: []ProductResponse{}, Level: level, Errors: []string{}}

	var restocked []catalog.Product
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		products, err := repos.Products().FindBelowStock(ctx, catalog.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("find low-stock products: %w", err)
		}
		for i := range products {
			if err := products[i].Restock(level); err != nil {
				return err
			}
		}
		if err := repos.Products().UpdateStock(ctx, products); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		restocked = products
		return nil
	})
	if err != nil {
		s.logger.Error("restock failed", zap.Int("level", level), zap.Error(err))
		result.Message = MsgRestockFailed
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Products = ToProductResponses(restocked)
	result.Message = fmt.Sprintf("Restocked %d products", len(restocked))
	if len(restocked) > 0 {
		s.publish(ctx, catalog.NewProductsRestockedEvent(restocked, level))
	}
	return result
}

// GetByID retrieves a product by ID.
// Returns shared.ErrNotFound when it does not exist.
func (s *ProductService) GetByID(ctx context.Context, id uint) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products matching the query, with the total count
func (s *ProductService) List(ctx context.Context, query shared.ListQuery) (*shared.Paginated[ProductResponse], error) {
	query = query.Normalize()

	products, err := s.productRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToProductResponses(products), total, query.Page, query.PageSize)
	return &page, nil
}

func (s *ProductService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
