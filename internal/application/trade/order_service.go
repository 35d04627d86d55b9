package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/crm/internal/application/transaction"
	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/trade"
	"go.uber.org/zap"
)

// Result messages
const (
	MsgOrderCreated        = "Order created successfully"
	MsgOrderCreationFailed = "Order creation failed"
	MsgCreateFailed        = "Failed to create order"
	MsgNoProducts          = "At least one product must be selected"
)

// orderRejection aborts the order transaction for reasons that are
// reported to the caller rather than treated as infrastructure failures
type orderRejection struct {
	reasons []string
}

func (e *orderRejection) Error() string {
	return fmt.Sprintf("order rejected: %v", e.reasons)
}

// OrderService handles order placement and queries
type OrderService struct {
	orderRepo      trade.OrderRepository
	txScope        transaction.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo trade.OrderRepository, txScope transaction.Scope, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the publisher notified about placed orders
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places an order for an existing customer over existing
// products. Any unknown product ID aborts the whole order. The customer
// lookup, product resolution and inserts share one transaction.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) *CreateOrderResult {
	var order *trade.Order
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return &orderRejection{reasons: []string{fmt.Sprintf("Invalid customer ID: %d", req.CustomerID)}}
			}
			return fmt.Errorf("load customer: %w", err)
		}

		ids := uniqueIDs(req.ProductIDs)
		if len(ids) == 0 {
			return &orderRejection{reasons: []string{MsgNoProducts}}
		}

		products, err := repos.Products().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		ordered, missing := orderProducts(ids, products)
		if len(missing) > 0 {
			reasons := make([]string, len(missing))
			for i, id := range missing {
				reasons[i] = fmt.Sprintf("Invalid product ID: %d", id)
			}
			return &orderRejection{reasons: reasons}
		}

		orderDate := s.now()
		if req.OrderDate != nil {
			orderDate = *req.OrderDate
		}
		order = trade.NewOrder(customer, orderDate)
		order.SetProducts(ordered)
		return repos.Orders().Create(ctx, order)
	})

	var rejection *orderRejection
	switch {
	case errors.As(err, &rejection):
		return &CreateOrderResult{Message: MsgOrderCreationFailed, Errors: rejection.reasons}
	case err != nil:
		s.logger.Error("order creation failed",
			zap.Uint("customer_id", req.CustomerID),
			zap.Uints("product_ids", req.ProductIDs),
			zap.Error(err),
		)
		return &CreateOrderResult{Message: MsgCreateFailed, Errors: []string{err.Error()}}
	}

	s.publish(ctx, trade.NewOrderCreatedEvent(order))

	response := ToOrderResponse(order)
	return &CreateOrderResult{
		Order:   &response,
		Message: MsgOrderCreated,
		Errors:  []string{},
	}
}

// GetByID retrieves an order with its customer and products.
// Returns shared.ErrNotFound when it does not exist.
func (s *OrderService) GetByID(ctx context.Context, id uint) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders matching the query, with the total count
func (s *OrderService) List(ctx context.Context, query shared.ListQuery) (*shared.Paginated[OrderResponse], error) {
	query = query.Normalize()

	orders, err := s.orderRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToOrderResponses(orders), total, query.Page, query.PageSize)
	return &page, nil
}

// ListPlacedSince returns every order placed at or after since, newest first
func (s *OrderService) ListPlacedSince(ctx context.Context, since time.Time) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindPlacedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

func (s *OrderService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Uint("aggregate_id", event.AggregateID()),
			zap.Error(err),
		)
	}
}

// uniqueIDs drops repeated IDs, keeping first-seen order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderProducts arranges products in the order of ids and reports the
// ids that have no product
func orderProducts(ids []uint, products []catalog.Product) ([]catalog.Product, []uint) {
	byID := make(map[uint]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]catalog.Product, 0, len(ids))
	var missing []uint
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, p)
	}
	return ordered, missing
}
