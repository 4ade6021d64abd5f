package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type settingsStore interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
	Update(ctx context.Context, settings *models.SchoolSettings) error
}

// UpdateSettingsRequest carries the editable settings fields. The
// receipt and slip counters are deliberately absent: they only move
// through the atomic store-side increment.
type UpdateSettingsRequest struct {
	SchoolName    string  `json:"school_name" validate:"required"`
	SchoolAddress *string `json:"school_address,omitempty"`
	SchoolPhone   *string `json:"school_phone,omitempty"`
	ReceiptPrefix string  `json:"receipt_prefix" validate:"required,max=8"`
	SlipPrefix    string  `json:"slip_prefix" validate:"required,max=8"`
	AcademicYear  string  `json:"academic_year" validate:"required"`
}

// SettingsService manages the singleton school configuration row.
type SettingsService struct {
	settings  settingsStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(settings settingsStore, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, validator: validate, logger: logger}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (*models.SchoolSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school settings not configured")
		}
		return nil, storeError(err, "failed to load settings")
	}
	return settings, nil
}

// Update writes the editable settings fields and returns the result.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.SchoolSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school settings not configured")
		}
		return nil, storeError(err, "failed to load settings")
	}

	settings.SchoolName = req.SchoolName
	settings.SchoolAddress = req.SchoolAddress
	settings.SchoolPhone = req.SchoolPhone
	settings.ReceiptPrefix = req.ReceiptPrefix
	settings.SlipPrefix = req.SlipPrefix
	settings.AcademicYear = req.AcademicYear

	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, storeError(err, "failed to update settings")
	}
	s.logger.Info("school settings updated", zap.String("academic_year", settings.AcademicYear))
	return settings, nil
}
