package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/crm/internal/application/transaction"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// Result messages
const (
	MsgValidationFailed = "Validation failed"
	MsgCreationFailed   = "Creation failed"
	MsgCustomerCreated  = "Customer created successfully"
	MsgCreateFailed     = "Failed to create customer"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	txScope        transaction.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, txScope transaction.Scope, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher notified about created customers
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates and persists a single customer. Expected failures are
// reported in the result; the method never returns a Go error.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) *CreateCustomerResult {
	if errs := partner.ValidateCustomerData(req.Name, req.Email, req.Phone); len(errs) > 0 {
		return &CreateCustomerResult{Message: MsgValidationFailed, Errors: errs}
	}

	email := partner.NormalizeEmail(req.Email)
	exists, err := s.customerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return s.createFailed(err)
	}
	if exists {
		return &CreateCustomerResult{
			Message: MsgCreationFailed,
			Errors:  []string{partner.EmailExistsMessage(email)},
		}
	}

	customer := partner.NewCustomer(partner.CustomerInput(req))
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// Lost the race against a concurrent insert of the same email
		if errors.Is(err, partner.ErrDuplicateEmail) {
			return &CreateCustomerResult{
				Message: MsgCreationFailed,
				Errors:  []string{partner.EmailExistsMessage(email)},
			}
		}
		return s.createFailed(err)
	}

	s.publish(ctx, partner.NewCustomerCreatedEvent(customer))

	response := ToCustomerResponse(customer)
	return &CreateCustomerResult{
		Customer: &response,
		Message:  MsgCustomerCreated,
		Errors:   []string{},
	}
}

// BulkCreate creates every valid record of the batch inside one
// transaction. Each insert runs under its own savepoint, so a rejected
// record never undoes the ones accepted before it. Only a failure of the
// transaction itself discards the whole batch.
func (s *CustomerService) BulkCreate(ctx context.Context, req BulkCreateCustomersRequest) *BulkCreateCustomersResult {
	result := &BulkCreateCustomersResult{
		Customers: []CustomerResponse{},
		Errors:    []string{},
	}

	var created []*partner.Customer
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		repo := repos.Customers()
		accepted := make(map[string]struct{}, len(req.Customers))

		for i, record := range req.Customers {
			n := i + 1
			if errs := partner.ValidateCustomerData(record.Name, record.Email, record.Phone); len(errs) > 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Record %d: %s", n, strings.Join(errs, ", ")))
				continue
			}

			email := partner.NormalizeEmail(record.Email)
			if _, dup := accepted[email]; dup {
				result.Errors = append(result.Errors, fmt.Sprintf("Record %d: Duplicate email in batch: %s", n, email))
				continue
			}

			exists, err := repo.ExistsByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("check email of record %d: %w", n, err)
			}
			if exists {
				result.Errors = append(result.Errors, fmt.Sprintf("Record %d: %s", n, partner.EmailExistsMessage(email)))
				continue
			}

			customer := partner.NewCustomer(partner.CustomerInput(record))
			if err := repo.Create(ctx, customer); err != nil {
				if errors.Is(err, partner.ErrDuplicateEmail) {
					result.Errors = append(result.Errors, fmt.Sprintf("Record %d: %s", n, partner.EmailExistsMessage(email)))
				} else {
					result.Errors = append(result.Errors, fmt.Sprintf("Record %d: Error - %s", n, err.Error()))
				}
				continue
			}

			accepted[email] = struct{}{}
			created = append(created, customer)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("bulk customer creation rolled back",
			zap.Int("records", len(req.Customers)),
			zap.Error(err),
		)
		created = nil
		result.RolledBack = true
		result.Errors = append(result.Errors, fmt.Sprintf("Transaction error: %s", err.Error()))
	}

	for _, customer := range created {
		result.Customers = append(result.Customers, ToCustomerResponse(customer))
		s.publish(ctx, partner.NewCustomerCreatedEvent(customer))
	}
	result.SuccessCount = len(created)
	result.FailureCount = len(req.Customers) - len(created)
	result.Message = fmt.Sprintf("Created %d of %d customers", result.SuccessCount, len(req.Customers))
	return result
}

// GetByID retrieves a customer by ID.
// Returns shared.ErrNotFound when it does not exist.
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers matching the query, with the total count
func (s *CustomerService) List(ctx context.Context, query shared.ListQuery) (*shared.Paginated[CustomerResponse], error) {
	query = query.Normalize()

	customers, err := s.customerRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToCustomerResponses(customers), total, query.Page, query.PageSize)
	return &page, nil
}

func (s *CustomerService) createFailed(err error) *CreateCustomerResult {
	s.logger.Error("customer creation failed", zap.Error(err))
	return &CreateCustomerResult{
		Message: MsgCreateFailed,
		Errors:  []string{err.Error()},
	}
}

func (s *CustomerService) publish(ctx context.Context, event shared.DomainEvent) {
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
