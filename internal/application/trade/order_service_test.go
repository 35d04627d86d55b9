package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/application/transaction"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/trade"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db        *gorm.DB
	svc       *OrderService
	publisher *testutil.RecordingPublisher
	customer  uint
	laptop    uint
	mouse     uint
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := NewOrderService(persistence.NewGormOrderRepository(db), persistence.NewGormTransactionScope(db), nil)
	publisher := testutil.NewRecordingPublisher()
	svc.SetEventPublisher(publisher)

	return &orderFixture{
		db:        db,
		svc:       svc,
		publisher: publisher,
		customer:  testutil.InsertCustomer(t, db, "Ann Lee", "ann@example.com", time.Now()).ID,
		laptop:    testutil.InsertProduct(t, db, "Laptop", "999.99", 5).ID,
		mouse:     testutil.InsertProduct(t, db, "Mouse", "25.50", 40).ID,
	}
}

func (f *orderFixture) orderCount(t *testing.T) int64 {
	t.Helper()
	n, err := persistence.NewGormOrderRepository(f.db).Count(context.Background(), shared.DefaultListQuery())
	require.NoError(t, err)
	return n
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("total is the exact sum of product prices", func(t *testing.T) {
		f := newOrderFixture(t)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.mouse, f.laptop}})

		require.True(t, result.Succeeded(), result.Errors)
		assert.Equal(t, MsgOrderCreated, result.Message)
		assert.True(t, decimal.RequireFromString("1025.49").Equal(result.Order.TotalAmount))
		require.Len(t, result.Order.Products, 2)
		assert.Equal(t, "Mouse", result.Order.Products[0].Name)
		assert.Equal(t, "ann@example.com", result.Order.Customer.Email)
		assert.WithinDuration(t, time.Now(), result.Order.OrderDate, time.Minute)
		assert.Equal(t, []string{trade.EventTypeOrderCreated}, f.publisher.Types())

		stored, err := f.svc.GetByID(ctx, result.Order.ID)
		require.NoError(t, err)
		assert.True(t, result.Order.TotalAmount.Equal(stored.TotalAmount))
		assert.Len(t, stored.Products, 2)
	})

	t.Run("explicit order date is kept in UTC", func(t *testing.T) {
		f := newOrderFixture(t)
		loc := time.FixedZone("UTC+2", 2*60*60)
		placed := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.mouse}, OrderDate: &placed})

		require.True(t, result.Succeeded(), result.Errors)
		assert.True(t, placed.Equal(result.Order.OrderDate))
		assert.Equal(t, time.UTC, result.Order.OrderDate.Location())
	})

	t.Run("repeated product ids are associated once", func(t *testing.T) {
		f := newOrderFixture(t)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.mouse, f.mouse}})

		require.True(t, result.Succeeded(), result.Errors)
		assert.Len(t, result.Order.Products, 1)
		assert.True(t, decimal.RequireFromString("25.50").Equal(result.Order.TotalAmount))
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newOrderFixture(t)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: 404, ProductIDs: []uint{f.mouse}})

		assert.False(t, result.Succeeded())
		assert.Equal(t, MsgOrderCreationFailed, result.Message)
		assert.Equal(t, []string{"Invalid customer ID: 404"}, result.Errors)
		assert.Zero(t, f.orderCount(t))
	})

	t.Run("empty product list", func(t *testing.T) {
		f := newOrderFixture(t)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer})

		assert.Equal(t, MsgOrderCreationFailed, result.Message)
		assert.Equal(t, []string{MsgNoProducts}, result.Errors)
	})

	t.Run("any invalid product id aborts the order", func(t *testing.T) {
		f := newOrderFixture(t)

		result := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.laptop, 900, f.mouse, 901}})

		assert.Nil(t, result.Order)
		assert.Equal(t, MsgOrderCreationFailed, result.Message)
		assert.Equal(t, []string{"Invalid product ID: 900", "Invalid product ID: 901"}, result.Errors)
		assert.Zero(t, f.orderCount(t))
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := NewOrderService(nil, failingScope{err: errors.New("too many connections")}, nil)

		result := svc.Create(ctx, CreateOrderRequest{CustomerID: 1, ProductIDs: []uint{1}})

		assert.Equal(t, MsgCreateFailed, result.Message)
		assert.Equal(t, []string{"too many connections"}, result.Errors)
	})
}

func TestOrderService_Queries(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	first := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.laptop}})
	require.True(t, first.Succeeded())
	old := time.Now().Add(-20 * 24 * time.Hour)
	second := f.svc.Create(ctx, CreateOrderRequest{CustomerID: f.customer, ProductIDs: []uint{f.mouse}, OrderDate: &old})
	require.True(t, second.Succeeded())

	t.Run("date_range week excludes older orders", func(t *testing.T) {
		q := shared.DefaultListQuery()
		q.Criteria = shared.Criteria{"date_range": "week"}

		page, err := f.svc.List(ctx, q)

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, first.Order.ID, page.Items[0].ID)
	})

	t.Run("placed since", func(t *testing.T) {
		orders, err := f.svc.ListPlacedSince(ctx, time.Now().Add(-30*24*time.Hour))

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, first.Order.ID, orders[0].ID)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := f.svc.GetByID(ctx, 999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, uniqueIDs([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, uniqueIDs(nil))
}

// failingScope fails before running any work
type failingScope struct {
	err error
}

func (s failingScope) Execute(context.Context, func(transaction.Repositories) error) error {
	return s.err
}
