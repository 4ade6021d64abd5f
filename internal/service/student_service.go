package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// StudentRequest carries the writable roster fields.
type StudentRequest struct {
	StudentID     string     `json:"student_id" validate:"required"`
	FullName      string     `json:"full_name" validate:"required"`
	Class         string     `json:"class" validate:"required"`
	Section       string     `json:"section" validate:"required"`
	RollNo        int        `json:"roll_no" validate:"gte=0"`
	ParentName    string     `json:"parent_name" validate:"required"`
	ParentPhone   string     `json:"parent_phone" validate:"required"`
	ParentEmail   *string    `json:"parent_email,omitempty" validate:"omitempty,email"`
	Address       *string    `json:"address,omitempty"`
	TotalFee      int64      `json:"total_fee" validate:"gte=0"`
	TotalBookFee  int64      `json:"total_book_fee" validate:"gte=0"`
	AcademicYear  string     `json:"academic_year" validate:"required"`
	AdmissionDate *time.Time `json:"admission_date,omitempty"`
}

// StudentService manages the roster.
type StudentService struct {
	students  studentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, validator: validate, logger: logger}
}

func (s *StudentService) validateRequest(req StudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if finance.ClassRank(req.Class) < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "unknown class")
	}
	return nil
}

// List returns students matching the filters with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student")
	}
	return student, nil
}

// Create enrolls a new student. Human-facing student codes are unique.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	exists, err := s.students.ExistsByCode(ctx, req.StudentID, "")
	if err != nil {
		return nil, storeError(err, "failed to check student code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "student id already in use")
	}

	student := &models.Student{
		StudentID:     req.StudentID,
		FullName:      req.FullName,
		Class:         req.Class,
		Section:       req.Section,
		RollNo:        req.RollNo,
		ParentName:    req.ParentName,
		ParentPhone:   req.ParentPhone,
		ParentEmail:   req.ParentEmail,
		Address:       req.Address,
		TotalFee:      req.TotalFee,
		TotalBookFee:  req.TotalBookFee,
		AcademicYear:  req.AcademicYear,
		Status:        models.StudentStatusActive,
		AdmissionDate: req.AdmissionDate,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, storeError(err, "failed to create student")
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.StudentID), zap.String("class", student.Class))
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest, status models.StudentStatus) (*models.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student")
	}
	exists, err := s.students.ExistsByCode(ctx, req.StudentID, id)
	if err != nil {
		return nil, storeError(err, "failed to check student code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "student id already in use")
	}

	student.StudentID = req.StudentID
	student.FullName = req.FullName
	student.Class = req.Class
	student.Section = req.Section
	student.RollNo = req.RollNo
	student.ParentName = req.ParentName
	student.ParentPhone = req.ParentPhone
	student.ParentEmail = req.ParentEmail
	student.Address = req.Address
	student.TotalFee = req.TotalFee
	student.TotalBookFee = req.TotalBookFee
	student.AcademicYear = req.AcademicYear
	student.AdmissionDate = req.AdmissionDate
	if status != "" {
		student.Status = status
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, storeError(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and, through the store, their ledger entries.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return storeError(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}
