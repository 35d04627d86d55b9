package handler

import (
	"errors"
	"io"
	"net/http"

	catalogapp "github.com/erp/crm/internal/application/catalog"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	restockLevel   int
}

// NewProductHandler creates a new ProductHandler. restockLevel is used
// when a restock request does not name a level; non-positive values fall
// back to catalogapp.DefaultRestockLevel.
func NewProductHandler(productService *catalogapp.ProductService, restockLevel int) *ProductHandler {
	if restockLevel <= 0 {
		restockLevel = catalogapp.DefaultRestockLevel
	}
	return &ProductHandler{
		productService: productService,
		restockLevel:   restockLevel,
	}
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.CreateProductResult}
// @Failure      422 {object} dto.Response{data=catalogapp.CreateProductResult}
// @Failure      500 {object} dto.Response{data=catalogapp.CreateProductResult}
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	result := h.productService.Create(c.Request.Context(), req)
	status := http.StatusCreated
	switch {
	case result.Succeeded():
	case result.Message == catalogapp.MsgCreateFailed:
		status = http.StatusInternalServerError
	default:
		status = http.StatusUnprocessableEntity
	}
	h.Mutation(c, status, result.Succeeded(), result)
}

// Restock godoc
// @Summary      Restock low-stock products
// @Description  Raises every product with stock below 10 to the requested level. The body is optional.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.RestockRequest false "Restock level"
// @Success      200 {object} dto.Response{data=catalogapp.RestockResult}
// @Failure      500 {object} dto.Response{data=catalogapp.RestockResult}
// @Router       /products/restock [post]
func (h *ProductHandler) Restock(c *gin.Context) {
	var req catalogapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.InvalidJSON(c, err)
		return
	}
	level := h.restockLevel
	if req.Level != nil {
		level = *req.Level
	}

	result := h.productService.RestockLowStock(c.Request.Context(), level)
	status := http.StatusOK
	if !result.Succeeded() {
		status = http.StatusInternalServerError
	}
	h.Mutation(c, status, result.Succeeded(), result)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Description  Filters: name, name_exact, search, price_gte, price_lte, stock, stock_gte, stock_lte, low_stock, in_stock, price_category, created_at_gte, created_at_lte
// @Tags         products
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field, prefix with - for descending"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, err := h.productService.List(c.Request.Context(), parseListQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
