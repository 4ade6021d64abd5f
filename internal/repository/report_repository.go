package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// ReportRepository serves the read side: per-student ledger slices that
// the aggregator folds into class-wise and school-wide summaries. It
// never mutates anything.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// StudentLedger returns one row per active student with the summed paid
// amount. Aggregation above the student level happens in the service so
// pending is computed per student before summing.
func (r *ReportRepository) StudentLedger(ctx context.Context) ([]models.StudentLedgerRow, error) {
	const query = `SELECT s.id, s.class, s.total_fee, COALESCE(SUM(p.amount), 0) AS total_paid
        FROM students s
        LEFT JOIN fee_payments p ON p.student_id = s.id
        WHERE s.status = 'active'
        GROUP BY s.id, s.class, s.total_fee`
	var rows []models.StudentLedgerRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("student ledger: %w", err)
	}
	return rows, nil
}

// PendingStudents returns active students together with their paid
// totals; the service filters to pending > 0 and sorts by the computed
// pending amount.
func (r *ReportRepository) PendingStudents(ctx context.Context) ([]models.PendingStudent, error) {
	const query = `SELECT s.id, s.student_id, s.full_name, s.class, s.section, s.parent_phone, s.total_fee, COALESCE(SUM(p.amount), 0) AS total_paid
        FROM students s
        LEFT JOIN fee_payments p ON p.student_id = s.id
        WHERE s.status = 'active'
        GROUP BY s.id, s.student_id, s.full_name, s.class, s.section, s.parent_phone, s.total_fee`
	var rows []models.PendingStudent
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("pending students: %w", err)
	}
	return rows, nil
}
