package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type staffStore interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id string) error
}

// StaffRequest carries the writable employee fields.
type StaffRequest struct {
	StaffID       string     `json:"staff_id" validate:"required"`
	FullName      string     `json:"full_name" validate:"required"`
	Role          string     `json:"role" validate:"required"`
	Subject       *string    `json:"subject,omitempty"`
	MonthlySalary int64      `json:"monthly_salary" validate:"gte=0"`
	JoiningDate   *time.Time `json:"joining_date,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Email         *string    `json:"email,omitempty" validate:"omitempty,email"`
}

// StaffService manages employee records.
type StaffService struct {
	staff     staffStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs StaffService.
func NewStaffService(staff staffStore, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{staff: staff, validator: validate, logger: logger}
}

// List returns staff matching the filters with pagination metadata.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return staff, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one staff member.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, storeError(err, "failed to load staff member")
	}
	return staff, nil
}

// Create adds a staff member.
func (s *StaffService) Create(ctx context.Context, req StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	staff := &models.Staff{
		StaffID:       req.StaffID,
		FullName:      req.FullName,
		Role:          req.Role,
		Subject:       req.Subject,
		MonthlySalary: req.MonthlySalary,
		JoiningDate:   req.JoiningDate,
		Phone:         req.Phone,
		Email:         req.Email,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, storeError(err, "failed to create staff member")
	}
	s.logger.Info("staff member added", zap.String("staff_id", staff.StaffID), zap.String("role", staff.Role))
	return staff, nil
}

// Update modifies an existing staff member.
func (s *StaffService) Update(ctx context.Context, id string, req StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	staff, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, storeError(err, "failed to load staff member")
	}

	staff.StaffID = req.StaffID
	staff.FullName = req.FullName
	staff.Role = req.Role
	staff.Subject = req.Subject
	staff.MonthlySalary = req.MonthlySalary
	staff.JoiningDate = req.JoiningDate
	staff.Phone = req.Phone
	staff.Email = req.Email

	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, storeError(err, "failed to update staff member")
	}
	return staff, nil
}

// Delete removes a staff member and, through the store, their salary
// entries.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.staff.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return storeError(err, "failed to delete staff member")
	}
	s.logger.Info("staff member deleted", zap.String("id", id))
	return nil
}
