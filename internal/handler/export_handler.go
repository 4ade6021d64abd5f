package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/service"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/response"
	"github.com/noah-isme/school-fees-api/pkg/storage"
)

// ExportHandler exposes asynchronous export endpoints.
type ExportHandler struct {
	exports *service.ExportService
	storage *storage.LocalStorage
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, store *storage.LocalStorage) *ExportHandler {
	return &ExportHandler{exports: exports, storage: store}
}

type exportRequest struct {
	Type         models.ExportType   `json:"type"`
	Format       models.ExportFormat `json:"format"`
	Class        string              `json:"class,omitempty"`
	AcademicYear string              `json:"academic_year,omitempty"`
}

// Request godoc
// @Summary Queue a CSV or PDF export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body exportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /exports [post]
func (h *ExportHandler) Request(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	createdBy := ""
	if claims := claimsFromContext(c); claims != nil {
		createdBy = claims.UserID
	}

	job, err := h.exports.Request(c.Request.Context(), req.Type, models.ExportJobParams{
		Class:        req.Class,
		AcademicYear: req.AcademicYear,
		Format:       req.Format,
	}, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(h.storage.Path(relPath), relPath)
}
