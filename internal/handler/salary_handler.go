package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fees-api/internal/service"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/response"
)

// SalaryHandler exposes the salary ledger endpoints.
type SalaryHandler struct {
	salaries *service.SalaryService
	metrics  *service.MetricsService
}

// NewSalaryHandler constructs SalaryHandler.
func NewSalaryHandler(salaries *service.SalaryService, metrics *service.MetricsService) *SalaryHandler {
	return &SalaryHandler{salaries: salaries, metrics: metrics}
}

// Record godoc
// @Summary Record a salary payment
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body service.RecordSalaryPaymentRequest true "Salary payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /salaries/payments [post]
func (h *SalaryHandler) Record(c *gin.Context) {
	var req service.RecordSalaryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.salaries.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordLedgerEntry("salary")
	response.Created(c, payment)
}

// History godoc
// @Summary Salary history for a staff member
// @Tags Salaries
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id}/salaries [get]
func (h *SalaryHandler) History(c *gin.Context) {
	payments, err := h.salaries.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Report godoc
// @Summary Salary ledger report
// @Tags Salaries
// @Produce json
// @Param month query string false "Month label, e.g. January 2026"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /salaries/report [get]
func (h *SalaryHandler) Report(c *gin.Context) {
	report, err := h.salaries.Report(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
