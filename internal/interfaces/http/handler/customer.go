package handler

import (
	"io"
	"net/http"
	"strings"

	partnerapp "github.com/erp/crm/internal/application/partner"
	csvimport "github.com/erp/crm/internal/infrastructure/import"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @Summary      Create a customer
// @Description  Validates and creates a customer. Every validation error is reported at once.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=partnerapp.CreateCustomerResult}
// @Failure      422 {object} dto.Response{data=partnerapp.CreateCustomerResult}
// @Failure      500 {object} dto.Response{data=partnerapp.CreateCustomerResult}
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	result := h.customerService.Create(c.Request.Context(), req)
	status := http.StatusCreated
	switch {
	case result.Succeeded():
	case result.Message == partnerapp.MsgCreateFailed:
		status = http.StatusInternalServerError
	default:
		status = http.StatusUnprocessableEntity
	}
	h.Mutation(c, status, result.Succeeded(), result)
}

// BulkCreate godoc
// @Summary      Create customers in bulk
// @Description  Creates the valid entries of a batch in one transaction and reports the invalid ones
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.BulkCreateCustomersRequest true "Customers"
// @Success      201 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Failure      422 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Failure      500 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Router       /customers/bulk [post]
func (h *CustomerHandler) BulkCreate(c *gin.Context) {
	var req partnerapp.BulkCreateCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	h.bulkCreate(c, req)
}

// ImportCSV godoc
// @Summary      Import customers from CSV
// @Description  Reads a CSV with name, email and optional phone columns and creates it as one bulk batch.
// @Description  The file is sent either as the raw body or as the multipart field "file".
// @Tags         customers
// @Accept       text/csv
// @Accept       multipart/form-data
// @Produce      json
// @Success      201 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Failure      500 {object} dto.Response{data=partnerapp.BulkCreateCustomersResult}
// @Router       /customers/import [post]
func (h *CustomerHandler) ImportCSV(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			h.BadRequest(c, "CSV file is required in form field \"file\"")
			return
		}
		f, err := header.Open()
		if err != nil {
			h.BadRequest(c, "Failed to open uploaded file")
			return
		}
		defer func() { _ = f.Close() }()
		body = f
	}

	req, err := csvimport.ReadCustomers(body)
	if err != nil {
		h.BadRequest(c, "Invalid CSV: "+err.Error())
		return
	}
	h.bulkCreate(c, req)
}

// bulkCreate runs a batch and maps its outcome: 201 when anything was
// created, 422 when every record was rejected, 500 when the batch was
// rolled back
func (h *CustomerHandler) bulkCreate(c *gin.Context, req partnerapp.BulkCreateCustomersRequest) {
	result := h.customerService.BulkCreate(c.Request.Context(), req)
	status := http.StatusCreated
	switch {
	case result.RolledBack:
		status = http.StatusInternalServerError
	case result.SuccessCount == 0 && result.FailureCount > 0:
		status = http.StatusUnprocessableEntity
	}
	h.Mutation(c, status, status == http.StatusCreated, result)
}

// GetByID godoc
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      404 {object} dto.Response
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Description  Filters: name, email, name_exact, email_exact, phone_pattern, search, created_at_gte, created_at_lte, has_orders
// @Tags         customers
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field, prefix with - for descending"
// @Success      200 {object} dto.Response{data=[]partnerapp.CustomerResponse}
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	page, err := h.customerService.List(c.Request.Context(), parseListQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
