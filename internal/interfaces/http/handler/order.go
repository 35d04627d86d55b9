package handler

import (
	"net/http"

	tradeapp "github.com/erp/crm/internal/application/trade"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @Summary      Place an order
// @Description  Places an order for an existing customer. Any unknown product ID rejects the whole order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=tradeapp.CreateOrderResult}
// @Failure      422 {object} dto.Response{data=tradeapp.CreateOrderResult}
// @Failure      500 {object} dto.Response{data=tradeapp.CreateOrderResult}
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	result := h.orderService.Create(c.Request.Context(), req)
	status := http.StatusCreated
	switch {
	case result.Succeeded():
	case result.Message == tradeapp.MsgOrderCreationFailed:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}
	h.Mutation(c, status, result.Succeeded(), result)
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      404 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List orders
// @Description  Filters: total_amount_gte, total_amount_lte, order_date_gte, order_date_lte, customer_name, customer_email, product_name, product_id, product_ids, date_range, value_category
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field, prefix with - for descending"
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderResponse}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	page, err := h.orderService.List(c.Request.Context(), parseListQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
