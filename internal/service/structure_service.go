package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type structureStore interface {
	UpsertFee(ctx context.Context, s *models.FeeStructure) error
	FindFee(ctx context.Context, class, academicYear string) (*models.FeeStructure, error)
	ListFee(ctx context.Context, academicYear string) ([]models.FeeStructure, error)
	UpsertBook(ctx context.Context, s *models.BookFeeStructure) error
	FindBook(ctx context.Context, class, academicYear string) (*models.BookFeeStructure, error)
	ListBook(ctx context.Context, academicYear string) ([]models.BookFeeStructure, error)
}

type feeCascader interface {
	CascadeTuitionFee(ctx context.Context, class, academicYear string, totalFee int64) (int64, error)
	CascadeBookFee(ctx context.Context, class, academicYear string, totalFee int64) (int64, error)
}

// CascadeResult reports the outcome of applying a structure to a cohort.
type CascadeResult struct {
	Class        string `json:"class"`
	AcademicYear string `json:"academic_year"`
	TotalFee     int64  `json:"total_fee"`
	Updated      int64  `json:"updated"`
}

// StructureService manages fee schedules and their application onto the
// roster. Stored totals are always the component sum recomputed at write
// time; a submitted total is ignored.
type StructureService struct {
	structures structureStore
	students   feeCascader
	cache      cacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStructureService constructs StructureService. cache may be nil.
func NewStructureService(structures structureStore, students feeCascader, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *StructureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructureService{structures: structures, students: students, cache: cache, validator: validate, logger: logger}
}

// invalidateSummaries drops cached dashboard aggregates after a cascade
// changes the roster's due totals.
func (s *StructureService) invalidateSummaries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSummaries(ctx); err != nil {
		s.logger.Warn("summary cache invalidation failed after cascade", zap.Error(err))
	}
}

func validStructureKey(class, academicYear string) error {
	if class == "" || academicYear == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class and academic year are required")
	}
	if finance.ClassRank(class) < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "unknown class")
	}
	return nil
}

func validComponents(amounts ...int64) error {
	for _, a := range amounts {
		if a < 0 {
			return appErrors.Clone(appErrors.ErrInvalidAmount, "fee components must not be negative")
		}
	}
	return nil
}

// SaveFee upserts a tuition structure keyed by (class, academic_year),
// recomputing the stored total from the components.
func (s *StructureService) SaveFee(ctx context.Context, structure *models.FeeStructure) (*models.FeeStructure, error) {
	if err := validStructureKey(structure.Class, structure.AcademicYear); err != nil {
		return nil, err
	}
	if err := validComponents(structure.TuitionFee, structure.AdmissionFee, structure.ExamFee, structure.LibraryFee, structure.SportsFee, structure.TransportFee, structure.MiscFee); err != nil {
		return nil, err
	}
	structure.TotalFee = structure.ComponentSum()
	if err := s.structures.UpsertFee(ctx, structure); err != nil {
		return nil, storeError(err, "failed to save fee structure")
	}
	s.logger.Info("fee structure saved",
		zap.String("class", structure.Class),
		zap.String("academic_year", structure.AcademicYear),
		zap.Int64("total_fee", structure.TotalFee),
	)
	return structure, nil
}

// SaveBook upserts a book structure with the same total discipline.
func (s *StructureService) SaveBook(ctx context.Context, structure *models.BookFeeStructure) (*models.BookFeeStructure, error) {
	if err := validStructureKey(structure.Class, structure.AcademicYear); err != nil {
		return nil, err
	}
	if err := validComponents(structure.ReadingBooks, structure.TextBooks, structure.PracticeBook, structure.DairyFee, structure.IDCardFee, structure.CoversFee, structure.Notebooks, structure.MiscFee); err != nil {
		return nil, err
	}
	structure.TotalFee = structure.ComponentSum()
	if err := s.structures.UpsertBook(ctx, structure); err != nil {
		return nil, storeError(err, "failed to save book fee structure")
	}
	s.logger.Info("book fee structure saved",
		zap.String("class", structure.Class),
		zap.String("academic_year", structure.AcademicYear),
		zap.Int64("total_fee", structure.TotalFee),
	)
	return structure, nil
}

// ListFee returns tuition structures, optionally scoped to one year.
func (s *StructureService) ListFee(ctx context.Context, academicYear string) ([]models.FeeStructure, error) {
	structures, err := s.structures.ListFee(ctx, academicYear)
	if err != nil {
		return nil, storeError(err, "failed to list fee structures")
	}
	return structures, nil
}

// ListBook returns book structures, optionally scoped to one year.
func (s *StructureService) ListBook(ctx context.Context, academicYear string) ([]models.BookFeeStructure, error) {
	structures, err := s.structures.ListBook(ctx, academicYear)
	if err != nil {
		return nil, storeError(err, "failed to list book fee structures")
	}
	return structures, nil
}

// CascadeFee applies the stored tuition structure total to every active
// student in the class and year. The write is one set-based statement,
// so the cohort is updated atomically, and the assignment is idempotent:
// re-running overwrites total_fee with the same value.
func (s *StructureService) CascadeFee(ctx context.Context, class, academicYear string) (*CascadeResult, error) {
	if err := validStructureKey(class, academicYear); err != nil {
		return nil, err
	}
	structure, err := s.structures.FindFee(ctx, class, academicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return nil, storeError(err, "failed to load fee structure")
	}
	updated, err := s.students.CascadeTuitionFee(ctx, class, academicYear, structure.TotalFee)
	if err != nil {
		return nil, bulkError(err, "failed to apply fee structure")
	}
	s.invalidateSummaries(ctx)
	s.logger.Info("fee structure cascaded",
		zap.String("class", class),
		zap.String("academic_year", academicYear),
		zap.Int64("updated", updated),
	)
	return &CascadeResult{Class: class, AcademicYear: academicYear, TotalFee: structure.TotalFee, Updated: updated}, nil
}

// CascadeBook applies the stored book structure total onto the cohort's
// total_book_fee.
func (s *StructureService) CascadeBook(ctx context.Context, class, academicYear string) (*CascadeResult, error) {
	if err := validStructureKey(class, academicYear); err != nil {
		return nil, err
	}
	structure, err := s.structures.FindBook(ctx, class, academicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book fee structure not found")
		}
		return nil, storeError(err, "failed to load book fee structure")
	}
	updated, err := s.students.CascadeBookFee(ctx, class, academicYear, structure.TotalFee)
	if err != nil {
		return nil, bulkError(err, "failed to apply book fee structure")
	}
	s.invalidateSummaries(ctx)
	s.logger.Info("book fee structure cascaded",
		zap.String("class", class),
		zap.String("academic_year", academicYear),
		zap.Int64("updated", updated),
	)
	return &CascadeResult{Class: class, AcademicYear: academicYear, TotalFee: structure.TotalFee, Updated: updated}, nil
}
