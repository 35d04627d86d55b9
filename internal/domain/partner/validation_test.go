package partner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneFormat(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"empty is valid", "", true},
		{"whitespace only is valid", "   ", true},
		{"international with plus", "+1234567890", true},
		{"fifteen digits", "123456789012345", true},
		{"hyphenated", "123-456-7890", true},
		{"parenthesized area code", "(123) 456-7890", true},
		{"spaces", "123 456 7890", true},
		{"plain ten digits", "1234567890", true},
		{"surrounding whitespace is trimmed", "  123-456-7890 ", true},
		{"too short", "12345", false},
		{"sixteen digits", "+1234567890123456", false},
		{"letters", "call-me-now", false},
		{"dots are not separators", "123.456.7890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhoneFormat(tt.phone))
		})
	}
}

func TestValidateCustomerData(t *testing.T) {
	t.Run("valid data has no errors", func(t *testing.T) {
		errs := ValidateCustomerData("Alice", "alice@example.com", "+1234567890")
		assert.Empty(t, errs)
	})

	t.Run("phone is optional", func(t *testing.T) {
		errs := ValidateCustomerData("Alice", "alice@example.com", "")
		assert.Empty(t, errs)
	})

	t.Run("whitespace-only name is rejected", func(t *testing.T) {
		errs := ValidateCustomerData("   ", "alice@example.com", "")
		assert.Equal(t, []string{ErrMsgNameRequired}, errs)
	})

	t.Run("missing email", func(t *testing.T) {
		errs := ValidateCustomerData("Alice", " ", "")
		assert.Equal(t, []string{ErrMsgEmailRequired}, errs)
	})

	t.Run("invalid email", func(t *testing.T) {
		errs := ValidateCustomerData("Alice", "not-an-email", "")
		assert.Equal(t, []string{"Invalid email format: not-an-email"}, errs)
	})

	t.Run("accumulates every violation", func(t *testing.T) {
		errs := ValidateCustomerData("", "bad", "12")
		assert.Len(t, errs, 3)
		assert.Equal(t, ErrMsgNameRequired, errs[0])
		assert.Equal(t, "Invalid email format: bad", errs[1])
		assert.True(t, strings.HasPrefix(errs[2], "Invalid phone format: 12."))
	})

	t.Run("overlong name", func(t *testing.T) {
		errs := ValidateCustomerData(strings.Repeat("a", MaxNameLength+1), "alice@example.com", "")
		assert.Len(t, errs, 1)
		assert.Contains(t, errs[0], "cannot exceed")
	})
}

func TestNewCustomer(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		c := NewCustomer(CustomerInput{
			Name:  "  Alice Smith ",
			Email: "  Alice@Example.COM ",
			Phone: " 123-456-7890 ",
		})

		assert.Equal(t, "Alice Smith", c.Name)
		assert.Equal(t, "alice@example.com", c.Email)
		assert.Equal(t, "123-456-7890", c.PhoneValue())
		assert.True(t, c.IsNew())
		assert.False(t, c.CreatedAt.IsZero())
	})

	t.Run("empty phone becomes nil", func(t *testing.T) {
		c := NewCustomer(CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: "  "})
		assert.Nil(t, c.Phone)
		assert.Equal(t, "", c.PhoneValue())
	})
}
