package csvimport

import (
	"strings"
	"testing"

	partnerapp "github.com/erp/crm/internal/application/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCustomers(t *testing.T) {
	input := "\xEF\xBB\xBFName, Email ,Phone,Notes\n" +
		"Ann Lee,ann@example.com,+12345678901,vip\n" +
		"\n" +
		" , , ,\n" +
		"\"Stone, Bob\",bob@example.com\n"

	req, err := ReadCustomers(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []partnerapp.CreateCustomerRequest{
		{Name: "Ann Lee", Email: "ann@example.com", Phone: "+12345678901"},
		{Name: "Stone, Bob", Email: "bob@example.com"},
	}, req.Customers)
}

func TestReadCustomers_Delimiter(t *testing.T) {
	req, err := ReadCustomers(strings.NewReader("email;name\nann@example.com;Ann\n"), WithDelimiter(';'))

	require.NoError(t, err)
	require.Len(t, req.Customers, 1)
	assert.Equal(t, "Ann", req.Customers[0].Name)
	assert.Equal(t, "ann@example.com", req.Customers[0].Email)
}

func TestReadCustomers_InvalidRecordsAreKeptForValidation(t *testing.T) {
	req, err := ReadCustomers(strings.NewReader("name,email\n,not-an-email\n"))

	require.NoError(t, err)
	assert.Equal(t, []partnerapp.CreateCustomerRequest{{Name: "", Email: "not-an-email"}}, req.Customers)
}

func TestReadCustomers_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{name: "empty", input: "  \n", wantErr: ErrEmptyFile},
		{name: "invalid encoding", input: "name,email\n\xff\xfe,x\n", wantErr: ErrInvalidEncoding},
		{name: "missing columns", input: "name,phone\nAnn,123\n", wantMsg: "missing required columns: email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCustomers(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestReadCustomers_HeaderOnly(t *testing.T) {
	req, err := ReadCustomers(strings.NewReader("name,email\n"))

	require.NoError(t, err)
	assert.Empty(t, req.Customers)
}
