package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reserved list query parameters. Every other query parameter is passed
// to the filter engine as a criterion.
const (
	queryPage     = "page"
	queryPageSize = "page_size"
	queryOrderBy  = "order_by"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.RequestIDContextKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Mutation sends a mutation envelope with the given status
func (h *BaseHandler) Mutation(c *gin.Context, statusCode int, succeeded bool, result any) {
	c.JSON(statusCode, dto.NewMutationResponse(succeeded, result))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InvalidJSON sends a 400 response for a body that could not be decoded
func (h *BaseHandler) InvalidJSON(c *gin.Context, err error) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
}

// HandleError converts an error from a query into an HTTP response.
// Domain errors keep their code, anything else is logged and reported as
// an internal error without leaking details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An internal error occurred")
}

// parseID reads the :id path parameter as a positive integer
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseListQuery builds a ListQuery from the request's query string.
// Malformed pagination values fall back to the defaults.
func parseListQuery(c *gin.Context) shared.ListQuery {
	q := shared.DefaultListQuery()
	if v, err := strconv.Atoi(c.Query(queryPage)); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query(queryPageSize)); err == nil {
		q.PageSize = v
	}
	q.OrderBy = c.Query(queryOrderBy)

	for key, values := range c.Request.URL.Query() {
		switch key {
		case queryPage, queryPageSize, queryOrderBy:
			continue
		}
		if len(values) > 0 {
			q.Criteria[key] = values[0]
		}
	}
	return q.Normalize()
}
