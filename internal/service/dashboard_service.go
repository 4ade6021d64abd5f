package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type rosterCounter interface {
	Counts(ctx context.Context) (total int, active int, err error)
}

type staffCounter interface {
	Count(ctx context.Context) (int, error)
}

type feeTotaller interface {
	TotalCollected(ctx context.Context) (int64, error)
}

type salaryTotaller interface {
	TotalPaid(ctx context.Context) (int64, error)
}

// DashboardService builds the admin overview. The payload is pure
// aggregation, so it tolerates a short cache; the TTL is the staleness
// bound.
type DashboardService struct {
	students rosterCounter
	staff    staffCounter
	fees     feeTotaller
	salaries salaryTotaller
	reports  ledgerReader
	cache    dashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService. cache may be nil to
// disable caching.
func NewDashboardService(students rosterCounter, staff staffCounter, fees feeTotaller, salaries salaryTotaller, reports ledgerReader, cache dashboardCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{students: students, staff: staff, fees: fees, salaries: salaries, reports: reports, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Summary returns the school-wide overview. Pending is folded per
// student before summing, matching the class-wise aggregation rules.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if s.cache != nil {
		var cached models.DashboardSummary
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	total, active, err := s.students.Counts(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count students")
	}
	staffCount, err := s.staff.Count(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count staff")
	}
	collected, err := s.fees.TotalCollected(ctx)
	if err != nil {
		return nil, storeError(err, "failed to sum collections")
	}
	salaryPaid, err := s.salaries.TotalPaid(ctx)
	if err != nil {
		return nil, storeError(err, "failed to sum salary payments")
	}
	rows, err := s.reports.StudentLedger(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load ledger rows")
	}

	var totalDue, totalPending int64
	for _, row := range rows {
		totalDue += row.TotalFee
		totalPending += finance.PendingAmount(row.TotalFee, row.TotalPaid)
	}

	summary := &models.DashboardSummary{
		TotalStudents:   total,
		ActiveStudents:  active,
		TotalStaff:      staffCount,
		TotalDue:        totalDue,
		TotalCollected:  collected,
		TotalPending:    totalPending,
		CollectionRate:  finance.CollectionRate(totalDue, collected),
		TotalSalaryPaid: salaryPaid,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// InvalidateSummaries drops cached dashboard payloads. Called after
// writes that change the aggregates in bulk.
func (s *DashboardService) InvalidateSummaries(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, "dashboard:*")
}
