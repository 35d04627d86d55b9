package partner

import (
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/shared"
)

// Field limits mirrored by the customers table
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MaxPhoneLength = 20
)

// Customer represents a customer record.
// Email is stored lowercased and is unique across all customers.
type Customer struct {
	shared.BaseEntity
	Name  string
	Email string
	Phone *string
}

// CustomerInput is the raw, unnormalized data for a new customer
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// NewCustomer creates a customer from already validated input, applying
// normalization: trimmed name, lowercased and trimmed email, trimmed phone
// or nil when empty.
func NewCustomer(input CustomerInput) *Customer {
	return &Customer{
		BaseEntity: shared.BaseEntity{CreatedAt: time.Now().UTC()},
		Name:       strings.TrimSpace(input.Name),
		Email:      NormalizeEmail(input.Email),
		Phone:      normalizePhone(input.Phone),
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PhoneValue returns the phone number or an empty string
func (c *Customer) PhoneValue() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}

func normalizePhone(phone string) *string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	return &phone
}
