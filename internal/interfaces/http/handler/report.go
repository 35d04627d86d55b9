package handler

import (
	reportapp "github.com/erp/crm/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the store summary
type ReportHandler struct {
	BaseHandler
	summaryService *reportapp.SummaryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(summaryService *reportapp.SummaryService) *ReportHandler {
	return &ReportHandler{summaryService: summaryService}
}

// Summary godoc
// @Summary      Store summary
// @Description  Customer count, order count and total revenue
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=reportapp.SummaryResponse}
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.summaryService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
