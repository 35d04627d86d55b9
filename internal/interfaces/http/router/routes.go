package router

import (
	_ "github.com/erp/crm/docs"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the API handlers served by the CRM
type Handlers struct {
	Customers *handler.CustomerHandler
	Products  *handler.ProductHandler
	Orders    *handler.OrderHandler
	Reports   *handler.ReportHandler
	Health    *handler.HealthHandler
}

// Groups returns the versioned API route groups
func (h Handlers) Groups() []RouteRegistrar {
	customers := NewDomainGroup("customers", "/customers").
		GET("", h.Customers.List).
		POST("", h.Customers.Create).
		POST("/bulk", h.Customers.BulkCreate).
		POST("/import", h.Customers.ImportCSV).
		GET("/:id", h.Customers.GetByID)

	products := NewDomainGroup("products", "/products").
		GET("", h.Products.List).
		POST("", h.Products.Create).
		POST("/restock", h.Products.Restock).
		GET("/:id", h.Products.GetByID)

	orders := NewDomainGroup("orders", "/orders").
		GET("", h.Orders.List).
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.GetByID)

	reports := NewDomainGroup("reports", "/reports").
		GET("/summary", h.Reports.Summary)

	return []RouteRegistrar{customers, products, orders, reports}
}

// RegisterHealth mounts the probes outside the versioned API
func RegisterHealth(engine *gin.Engine, h *handler.HealthHandler) {
	engine.GET("/health", h.Live)
	engine.GET("/health/ready", h.Ready)
}

// RegisterSwagger serves the API description and UI under /swagger
func RegisterSwagger(engine *gin.Engine) {
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
