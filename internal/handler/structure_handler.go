package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/service"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/response"
)

// StructureHandler exposes fee schedule endpoints.
type StructureHandler struct {
	structures *service.StructureService
}

// NewStructureHandler constructs StructureHandler.
func NewStructureHandler(structures *service.StructureService) *StructureHandler {
	return &StructureHandler{structures: structures}
}

// ListFee godoc
// @Summary List tuition fee structures
// @Tags Structures
// @Produce json
// @Param academicYear query string false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/fees [get]
func (h *StructureHandler) ListFee(c *gin.Context) {
	structures, err := h.structures.ListFee(c.Request.Context(), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structures, nil)
}

// SaveFee godoc
// @Summary Create or replace a tuition fee structure
// @Tags Structures
// @Accept json
// @Produce json
// @Param payload body models.FeeStructure true "Structure payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/fees [put]
func (h *StructureHandler) SaveFee(c *gin.Context) {
	var structure models.FeeStructure
	if err := c.ShouldBindJSON(&structure); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	saved, err := h.structures.SaveFee(c.Request.Context(), &structure)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// ListBook godoc
// @Summary List book fee structures
// @Tags Structures
// @Produce json
// @Param academicYear query string false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/books [get]
func (h *StructureHandler) ListBook(c *gin.Context) {
	structures, err := h.structures.ListBook(c.Request.Context(), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structures, nil)
}

// SaveBook godoc
// @Summary Create or replace a book fee structure
// @Tags Structures
// @Accept json
// @Produce json
// @Param payload body models.BookFeeStructure true "Structure payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/books [put]
func (h *StructureHandler) SaveBook(c *gin.Context) {
	var structure models.BookFeeStructure
	if err := c.ShouldBindJSON(&structure); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	saved, err := h.structures.SaveBook(c.Request.Context(), &structure)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

type cascadeRequest struct {
	Class        string `json:"class"`
	AcademicYear string `json:"academic_year"`
}

// CascadeFee godoc
// @Summary Apply a tuition fee structure to the class cohort
// @Tags Structures
// @Accept json
// @Produce json
// @Param payload body cascadeRequest true "Cohort key"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/fees/apply [post]
func (h *StructureHandler) CascadeFee(c *gin.Context) {
	var req cascadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.structures.CascadeFee(c.Request.Context(), req.Class, req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CascadeBook godoc
// @Summary Apply a book fee structure to the class cohort
// @Tags Structures
// @Accept json
// @Produce json
// @Param payload body cascadeRequest true "Cohort key"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /structures/books/apply [post]
func (h *StructureHandler) CascadeBook(c *gin.Context) {
	var req cascadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.structures.CascadeBook(c.Request.Context(), req.Class, req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
