package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/pkg/response"
)

// ReportHandler exposes the reporting endpoints.
type ReportHandler struct {
	reports   *service.ReportService
	dashboard *service.DashboardService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, dashboard *service.DashboardService) *ReportHandler {
	return &ReportHandler{reports: reports, dashboard: dashboard}
}

// ClassSummary godoc
// @Summary Class-wise fee collection summary
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/class-summary [get]
func (h *ReportHandler) ClassSummary(c *gin.Context) {
	summaries, err := h.reports.ClassWiseSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// PendingStudents godoc
// @Summary Students with outstanding balances
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/pending [get]
func (h *ReportHandler) PendingStudents(c *gin.Context) {
	pending, err := h.reports.PendingStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}

// Dashboard godoc
// @Summary School-wide overview
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
