package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type promoter interface {
	PromoteAll(ctx context.Context, fromYear, toYear string, classOrder []string) (int64, error)
}

type cacheInvalidator interface {
	InvalidateSummaries(ctx context.Context) error
}

// PromotionResult reports how many roster rows a promotion touched.
// Graduating students are included: they transition to inactive in the
// same statement.
type PromotionResult struct {
	FromYear string `json:"from_year"`
	ToYear   string `json:"to_year"`
	Promoted int64  `json:"promoted"`
}

// PromotionService advances the whole active roster from one academic
// year to the next.
type PromotionService struct {
	students promoter
	cache    cacheInvalidator
	logger   *zap.Logger
}

// NewPromotionService constructs PromotionService. cache may be nil.
func NewPromotionService(students promoter, cache cacheInvalidator, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{students: students, cache: cache, logger: logger}
}

// PromoteAll moves every active student of fromYear one class forward
// into toYear. Students in the terminal class are retired to inactive
// instead. The transition runs as one set-based statement, so a failure
// leaves no student half promoted.
func (s *PromotionService) PromoteAll(ctx context.Context, fromYear, toYear string) (*PromotionResult, error) {
	if fromYear == "" || toYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from and to academic years are required")
	}
	if fromYear == toYear {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target academic year must differ from the source year")
	}

	promoted, err := s.students.PromoteAll(ctx, fromYear, toYear, finance.ClassOrder)
	if err != nil {
		return nil, bulkError(err, "failed to promote students")
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSummaries(ctx); err != nil {
			s.logger.Warn("summary cache invalidation failed after promotion", zap.Error(err))
		}
	}

	s.logger.Info("roster promoted",
		zap.String("from_year", fromYear),
		zap.String("to_year", toYear),
		zap.Int64("promoted", promoted),
	)
	return &PromotionResult{FromYear: fromYear, ToYear: toYear, Promoted: promoted}, nil
}
