package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
)

type ledgerReader interface {
	StudentLedger(ctx context.Context) ([]models.StudentLedgerRow, error)
	PendingStudents(ctx context.Context) ([]models.PendingStudent, error)
}

// ReportService folds per-student ledger rows into class-wise and
// school-wide summaries. Pending is computed per student before summing,
// so one student's overpayment never hides another's shortfall.
type ReportService struct {
	reports ledgerReader
	logger  *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(reports ledgerReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, logger: logger}
}

// ClassWiseSummary returns one aggregate per class holding active
// students, ordered by class progression. Classes outside the known
// order sort last, alphabetically.
func (s *ReportService) ClassWiseSummary(ctx context.Context) ([]models.ClassSummary, error) {
	rows, err := s.reports.StudentLedger(ctx)
	if err != nil {
		return nil, storeError(err, "failed to build class summary")
	}

	byClass := map[string]*models.ClassSummary{}
	for _, row := range rows {
		summary, ok := byClass[row.Class]
		if !ok {
			summary = &models.ClassSummary{Class: row.Class}
			byClass[row.Class] = summary
		}
		summary.TotalDue += row.TotalFee
		summary.Collected += row.TotalPaid
		summary.Pending += finance.PendingAmount(row.TotalFee, row.TotalPaid)
	}

	summaries := make([]models.ClassSummary, 0, len(byClass))
	for _, summary := range byClass {
		summary.CollectionRate = finance.CollectionRate(summary.TotalDue, summary.Collected)
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		ri, rj := finance.ClassRank(summaries[i].Class), finance.ClassRank(summaries[j].Class)
		if ri < 0 && rj < 0 {
			return summaries[i].Class < summaries[j].Class
		}
		if ri < 0 {
			return false
		}
		if rj < 0 {
			return true
		}
		return ri < rj
	})
	return summaries, nil
}

// PendingStudents returns active students with an outstanding balance,
// largest pending amount first.
func (s *ReportService) PendingStudents(ctx context.Context) ([]models.PendingStudent, error) {
	rows, err := s.reports.PendingStudents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list pending students")
	}

	pending := make([]models.PendingStudent, 0, len(rows))
	for _, row := range rows {
		row.PendingAmount = finance.PendingAmount(row.TotalFee, row.TotalPaid)
		if row.PendingAmount > 0 {
			pending = append(pending, row)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].PendingAmount != pending[j].PendingAmount {
			return pending[i].PendingAmount > pending[j].PendingAmount
		}
		return pending[i].FullName < pending[j].FullName
	})
	return pending, nil
}
