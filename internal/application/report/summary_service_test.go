package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/trade"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
	trade.OrderRepository
}

func (m *MockOrderRepository) Summarize(ctx context.Context) (*trade.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Summary), args.Error(1)
}

func TestSummaryService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates persisted data", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		ann := testutil.InsertCustomer(t, db, "Ann", "ann@example.com", time.Now())
		testutil.InsertCustomer(t, db, "Bob", "bob@example.com", time.Now())
		laptop := testutil.InsertProduct(t, db, "Laptop", "999.99", 3)
		testutil.InsertOrder(t, db, ann, time.Now(), laptop)

		svc := NewSummaryService(persistence.NewGormOrderRepository(db))
		summary, err := svc.Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, "2 customers, 1 orders, 999.99 revenue", summary.Line())
		assert.Equal(t, time.UTC, summary.GeneratedAt.Location())
	})

	t.Run("revenue is always rendered with two decimals", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("Summarize", ctx).Return(&trade.Summary{Revenue: decimal.NewFromInt(12)}, nil)

		summary, err := NewSummaryService(repo).Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, "0 customers, 0 orders, 12.00 revenue", summary.Line())
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("Summarize", ctx).Return(nil, errors.New("boom"))

		_, err := NewSummaryService(repo).Summary(ctx)

		assert.EqualError(t, err, "summarize orders: boom")
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}
