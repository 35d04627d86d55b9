// Package testutil provides common test utilities for the CRM service:
// throwaway databases, fixtures, event capture and gin helpers.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var sqliteSeq atomic.Int64

// NewSQLiteDB opens a private in-memory SQLite database with the CRM
// schema migrated. The pool is limited to one connection so the in-memory
// database lives as long as the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:crm_test_%d?mode=memory&cache=private&_foreign_keys=1", sqliteSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "Failed to migrate schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a GORM postgres dialector over sqlmock. The
// connection is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() {
		_ = mockDB.Close()
	})
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// InsertCustomer stores a customer row directly and returns it
func InsertCustomer(t *testing.T, db *gorm.DB, name, email string, createdAt time.Time) *models.CustomerModel {
	t.Helper()
	m := &models.CustomerModel{Name: name, Email: strings.ToLower(email)}
	m.CreatedAt = createdAt.UTC()
	require.NoError(t, db.Create(m).Error)
	return m
}

// InsertProduct stores a product row directly and returns it
func InsertProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.ProductModel {
	t.Helper()
	m := &models.ProductModel{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	m.CreatedAt = time.Now().UTC()
	require.NoError(t, db.Create(m).Error)
	return m
}

// InsertOrder stores an order linked to the given products. The total is
// the sum of the product prices.
func InsertOrder(t *testing.T, db *gorm.DB, customer *models.CustomerModel, orderDate time.Time, products ...*models.ProductModel) *models.OrderModel {
	t.Helper()
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	m := &models.OrderModel{
		CustomerID:  customer.ID,
		OrderDate:   orderDate.UTC(),
		TotalAmount: total,
	}
	m.CreatedAt = time.Now().UTC()
	require.NoError(t, db.Omit("Customer", "Products").Create(m).Error)
	for _, p := range products {
		require.NoError(t, db.Table(models.OrderProductsTable).Create(map[string]any{
			"order_id":   m.ID,
			"product_id": p.ID,
		}).Error)
	}
	return m
}

// TestContext wraps a Gin test context with HTTP recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a new Gin test context.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	return &TestContext{
		Context:  c,
		Recorder: w,
		Engine:   engine,
	}
}

// ResponseBody returns the response body as bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually retries condition until it holds or the timeout passes.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
