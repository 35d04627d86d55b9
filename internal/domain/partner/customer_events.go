package partner

import "github.com/erp/crm/internal/domain/shared"

// AggregateTypeCustomer is the aggregate type for customer events
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerCreated is published when a new customer is created
const EventTypeCustomerCreated = "customer.created"

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uint   `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Name:            customer.Name,
		Email:           customer.Email,
	}
}
