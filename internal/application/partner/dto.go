package partner

import (
	"time"

	"github.com/erp/crm/internal/domain/partner"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer.
// Fields are validated by the service, not by binding tags, so every
// violation can be reported at once.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BulkCreateCustomersRequest represents a batch of customers to create
type BulkCreateCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerResult is the outcome of a single customer creation.
// Customer is nil whenever Errors is non-empty.
type CreateCustomerResult struct {
	Customer *CustomerResponse `json:"customer"`
	Message  string            `json:"message"`
	Errors   []string          `json:"errors"`
}

// Succeeded reports whether the customer was created
func (r *CreateCustomerResult) Succeeded() bool {
	return r.Customer != nil
}

// BulkCreateCustomersResult is the outcome of a bulk creation
type BulkCreateCustomersResult struct {
	Customers    []CustomerResponse `json:"customers"`
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
	Message      string             `json:"message"`
	Errors       []string           `json:"errors"`
	// RolledBack is set when the batch transaction failed and nothing
	// was persisted
	RolledBack bool `json:"-"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

// ToCustomerResponses converts a slice of domain Customers to responses
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
