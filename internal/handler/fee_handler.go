package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/service"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/response"
)

// FeeHandler exposes the fee ledger endpoints.
type FeeHandler struct {
	fees    *service.FeeService
	metrics *service.MetricsService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService, metrics *service.MetricsService) *FeeHandler {
	return &FeeHandler{fees: fees, metrics: metrics}
}

// Record godoc
// @Summary Record a fee payment
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.RecordFeePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/payments [post]
func (h *FeeHandler) Record(c *gin.Context) {
	var req service.RecordFeePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.fees.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordLedgerEntry("fee")
	response.Created(c, payment)
}

// History godoc
// @Summary Payment history for a student
// @Tags Fees
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/payments [get]
func (h *FeeHandler) History(c *gin.Context) {
	payments, err := h.fees.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Dues godoc
// @Summary Dues and payment status for a student
// @Tags Fees
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/dues [get]
func (h *FeeHandler) Dues(c *gin.Context) {
	dues, err := h.fees.Dues(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dues, nil)
}

// List godoc
// @Summary List fee transactions
// @Tags Fees
// @Produce json
// @Param search query string false "Search by student name or receipt number"
// @Param class query string false "Filter by class"
// @Param academicYear query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/payments [get]
func (h *FeeHandler) List(c *gin.Context) {
	var filter models.FeePaymentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Class = c.Query("class")
	filter.AcademicYear = c.Query("academicYear")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.fees.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Receipt godoc
// @Summary Download a payment receipt PDF
// @Tags Fees
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /fees/payments/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	data, filename, err := h.fees.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
