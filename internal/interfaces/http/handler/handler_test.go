package handler_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/erp/crm/internal/application/catalog"
	partnerapp "github.com/erp/crm/internal/application/partner"
	reportapp "github.com/erp/crm/internal/application/report"
	tradeapp "github.com/erp/crm/internal/application/trade"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/erp/crm/internal/interfaces/http/router"
	"github.com/erp/crm/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiFixture struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newAPI(t *testing.T, pinger handler.Pinger) *apiFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	handlers := router.Handlers{
		Customers: handler.NewCustomerHandler(partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db), scope, nil)),
		Products:  handler.NewProductHandler(catalogapp.NewProductService(persistence.NewGormProductRepository(db), scope, nil), 0),
		Orders:    handler.NewOrderHandler(tradeapp.NewOrderService(orderRepo, scope, nil)),
		Reports:   handler.NewReportHandler(reportapp.NewSummaryService(orderRepo)),
		Health:    handler.NewHealthHandler(pinger, "test"),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(handlers.Groups()...).Setup()
	router.RegisterHealth(engine, handlers.Health)
	return &apiFixture{db: db, engine: engine}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, f.engine, method, path, body)
}

func uintPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func healthy() handler.Pinger {
	return pingerFunc(func(context.Context) error { return nil })
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/customers", map[string]string{
			"name": "Ann Lee", "email": "Ann@Example.com", "phone": "+12345678901",
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		result := testutil.DecodeData[partnerapp.CreateCustomerResult](t, w)
		require.NotNil(t, result.Customer)
		assert.Equal(t, "ann@example.com", result.Customer.Email)
		assert.Equal(t, partnerapp.MsgCustomerCreated, result.Message)
		assert.Empty(t, result.Errors)
	})

	t.Run("validation errors are returned in the envelope", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/customers", map[string]string{"name": " ", "email": "nope"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		assert.False(t, env.Success)
		result := testutil.DecodeData[partnerapp.CreateCustomerResult](t, w)
		assert.Nil(t, result.Customer)
		assert.Equal(t, partnerapp.MsgValidationFailed, result.Message)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("duplicate email", func(t *testing.T) {
		api := newAPI(t, healthy())
		testutil.InsertCustomer(t, api.db, "Ann", "ann@example.com", time.Now())

		w := api.do(t, http.MethodPost, "/api/v1/customers", map[string]string{"name": "Ann", "email": "ann@example.com"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		result := testutil.DecodeData[partnerapp.CreateCustomerResult](t, w)
		assert.Equal(t, partnerapp.MsgCreationFailed, result.Message)
		assert.Equal(t, []string{"Email already exists: ann@example.com"}, result.Errors)
	})

	t.Run("malformed body", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/customers", "not an object")

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
	})
}

func TestCustomerHandler_BulkCreate(t *testing.T) {
	t.Run("partial success", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/customers/bulk", partnerapp.BulkCreateCustomersRequest{
			Customers: []partnerapp.CreateCustomerRequest{
				{Name: "Ann", Email: "ann@example.com"},
				{Name: "", Email: "bad"},
				{Name: "Bob", Email: "bob@example.com"},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		result := testutil.DecodeData[partnerapp.BulkCreateCustomersResult](t, w)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 1, result.FailureCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Record 2:")
	})

	t.Run("nothing created", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/customers/bulk", partnerapp.BulkCreateCustomersRequest{
			Customers: []partnerapp.CreateCustomerRequest{{Name: "", Email: ""}},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.False(t, testutil.DecodeEnvelope(t, w).Success)
	})
}

func TestCustomerHandler_ImportCSV(t *testing.T) {
	csvBody := "name,email,phone\nAnn,ann@example.com,\n,broken\nBob,bob@example.com,+12345678901\n"

	t.Run("raw body", func(t *testing.T) {
		api := newAPI(t, healthy())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/import", strings.NewReader(csvBody))
		req.Header.Set("Content-Type", "text/csv")
		w := httptest.NewRecorder()

		api.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		result := testutil.DecodeData[partnerapp.BulkCreateCustomersResult](t, w)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 1, result.FailureCount)
		require.Len(t, result.Errors, 1)
		assert.True(t, strings.HasPrefix(result.Errors[0], "Record 2: "))
	})

	t.Run("multipart upload", func(t *testing.T) {
		api := newAPI(t, healthy())
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "customers.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("name,email\nCara,cara@example.com\n"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		result := testutil.DecodeData[partnerapp.BulkCreateCustomersResult](t, w)
		assert.Equal(t, 1, result.SuccessCount)
	})

	t.Run("missing columns", func(t *testing.T) {
		api := newAPI(t, healthy())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/import", strings.NewReader("name\nAnn\n"))
		req.Header.Set("Content-Type", "text/csv")
		w := httptest.NewRecorder()

		api.engine.ServeHTTP(w, req)

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}

func TestCustomerHandler_Queries(t *testing.T) {
	api := newAPI(t, healthy())
	ann := testutil.InsertCustomer(t, api.db, "Ann Lee", "ann@example.com", time.Now().Add(-time.Hour))
	testutil.InsertCustomer(t, api.db, "Bob Stone", "bob@example.com", time.Now())

	t.Run("get", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/customers/"+uintPath(ann.ID), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		customer := testutil.DecodeData[partnerapp.CustomerResponse](t, w)
		assert.Equal(t, "Ann Lee", customer.Name)
	})

	t.Run("not found", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/customers/9999", nil)

		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/customers/abc", nil)

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("list with criteria and pagination", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/customers?name=bob&page_size=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		assert.Equal(t, 5, env.Meta.PageSize)
		customers := testutil.DecodeData[[]partnerapp.CustomerResponse](t, w)
		require.Len(t, customers, 1)
		assert.Equal(t, "Bob Stone", customers[0].Name)
	})

	t.Run("list ordering", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/customers?order_by=name", nil)

		customers := testutil.DecodeData[[]partnerapp.CustomerResponse](t, w)
		require.Len(t, customers, 2)
		assert.Equal(t, "Ann Lee", customers[0].Name)
	})
}

func TestProductHandler(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/products", map[string]any{"name": "Desk", "price": "120.50", "stock": 4})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		result := testutil.DecodeData[catalogapp.CreateProductResult](t, w)
		require.NotNil(t, result.Product)
		assert.True(t, decimal.RequireFromString("120.50").Equal(result.Product.Price))
		assert.True(t, result.Product.LowStock)
	})

	t.Run("create with invalid values", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodPost, "/api/v1/products", map[string]any{"name": "", "price": "-1"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		result := testutil.DecodeData[catalogapp.CreateProductResult](t, w)
		assert.Equal(t, catalogapp.MsgValidationFailed, result.Message)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("restock uses the default level without a body", func(t *testing.T) {
		api := newAPI(t, healthy())
		testutil.InsertProduct(t, api.db, "Cable", "5.00", 2)
		testutil.InsertProduct(t, api.db, "Monitor", "300.00", 50)

		w := api.do(t, http.MethodPost, "/api/v1/products/restock", nil)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := testutil.DecodeData[catalogapp.RestockResult](t, w)
		assert.Equal(t, "Restocked 1 products", result.Message)
		require.Len(t, result.Products, 1)
		assert.Equal(t, catalogapp.DefaultRestockLevel, result.Products[0].Stock)
	})

	t.Run("restock with an explicit level", func(t *testing.T) {
		api := newAPI(t, healthy())
		testutil.InsertProduct(t, api.db, "Cable", "5.00", 2)

		w := api.do(t, http.MethodPost, "/api/v1/products/restock", map[string]int{"level": 30})

		result := testutil.DecodeData[catalogapp.RestockResult](t, w)
		assert.Equal(t, 30, result.Level)
		assert.Equal(t, 30, result.Products[0].Stock)
	})

	t.Run("list by price category", func(t *testing.T) {
		api := newAPI(t, healthy())
		testutil.InsertProduct(t, api.db, "Laptop", "999.99", 20)
		testutil.InsertProduct(t, api.db, "Mouse", "19.99", 20)

		w := api.do(t, http.MethodGet, "/api/v1/products?price_category=premium", nil)

		products := testutil.DecodeData[[]catalogapp.ProductResponse](t, w)
		require.Len(t, products, 1)
		assert.Equal(t, "Laptop", products[0].Name)
	})
}

func TestOrderHandler(t *testing.T) {
	api := newAPI(t, healthy())
	ann := testutil.InsertCustomer(t, api.db, "Ann", "ann@example.com", time.Now())
	laptop := testutil.InsertProduct(t, api.db, "Laptop", "999.99", 5)
	mouse := testutil.InsertProduct(t, api.db, "Mouse", "25.50", 40)

	var created tradeapp.CreateOrderResult
	t.Run("create", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
			"customer_id": ann.ID,
			"product_ids": []uint{laptop.ID, mouse.ID},
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created = testutil.DecodeData[tradeapp.CreateOrderResult](t, w)
		require.NotNil(t, created.Order)
		assert.True(t, decimal.RequireFromString("1025.49").Equal(created.Order.TotalAmount))
	})

	t.Run("unknown product rejects the order", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
			"customer_id": ann.ID,
			"product_ids": []uint{laptop.ID, 777},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		result := testutil.DecodeData[tradeapp.CreateOrderResult](t, w)
		assert.Equal(t, tradeapp.MsgOrderCreationFailed, result.Message)
		assert.Equal(t, []string{"Invalid product ID: 777"}, result.Errors)
	})

	t.Run("get", func(t *testing.T) {
		require.NotNil(t, created.Order)
		w := api.do(t, http.MethodGet, "/api/v1/orders/"+uintPath(created.Order.ID), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		order := testutil.DecodeData[tradeapp.OrderResponse](t, w)
		assert.Len(t, order.Products, 2)
		assert.Equal(t, "Ann", order.Customer.Name)
	})

	t.Run("list by customer email", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/orders?customer_email=ann@", nil)

		orders := testutil.DecodeData[[]tradeapp.OrderResponse](t, w)
		assert.Len(t, orders, 1)
	})

	t.Run("summary", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/reports/summary", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		summary := testutil.DecodeData[reportapp.SummaryResponse](t, w)
		assert.Equal(t, int64(1), summary.CustomerCount)
		assert.Equal(t, int64(1), summary.OrderCount)
		assert.True(t, decimal.RequireFromString("1025.49").Equal(summary.Revenue))
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		api := newAPI(t, healthy())

		w := api.do(t, http.MethodGet, "/health/ready", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		health := testutil.DecodeData[handler.HealthResponse](t, w)
		assert.Equal(t, "up", health.Database)
	})

	t.Run("database down", func(t *testing.T) {
		api := newAPI(t, pingerFunc(func(context.Context) error { return errors.New("connection refused") }))

		w := api.do(t, http.MethodGet, "/health/ready", nil)

		testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, dto.ErrCodeUnavailable)
	})

	t.Run("live", func(t *testing.T) {
		api := newAPI(t, pingerFunc(func(context.Context) error { return errors.New("down") }))

		w := api.do(t, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
