package partner

import (
	"context"

	"github.com/erp/crm/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID.
	// Returns shared.ErrNotFound when no customer exists.
	FindByID(ctx context.Context, id uint) (*Customer, error)

	// FindAll finds all customers matching the query criteria, ordered and paginated
	FindAll(ctx context.Context, query shared.ListQuery) ([]Customer, error)

	// Count counts customers matching the query criteria
	Count(ctx context.Context, query shared.ListQuery) (int64, error)

	// ExistsByEmail checks whether a customer with the email exists (case-insensitive)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new customer and assigns its ID.
	// Returns ErrDuplicateEmail when the email unique constraint is violated.
	Create(ctx context.Context, customer *Customer) error
}

// ErrDuplicateEmail is returned by repositories when the unique email index rejects an insert
var ErrDuplicateEmail = shared.NewDomainError(shared.CodeAlreadyExists, "Email already exists")
