package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// SalaryPaymentRepository manages the append-only salary ledger.
type SalaryPaymentRepository struct {
	db *sqlx.DB
}

// NewSalaryPaymentRepository constructs a SalaryPaymentRepository.
func NewSalaryPaymentRepository(db *sqlx.DB) *SalaryPaymentRepository {
	return &SalaryPaymentRepository{db: db}
}

// Create appends a ledger entry.
func (r *SalaryPaymentRepository) Create(ctx context.Context, payment *models.SalaryPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO salary_payments (id, staff_id, amount, month, payment_date, payment_method, slip_number, remarks, created_at)
        VALUES (:id, :staff_id, :amount, :month, :payment_date, :payment_method, :slip_number, :remarks, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create salary payment: %w", err)
	}
	return nil
}

// ListByStaff returns a staff member's salary history, most recent
// payment date first with insertion order as the stable secondary key.
func (r *SalaryPaymentRepository) ListByStaff(ctx context.Context, staffID string) ([]models.SalaryPayment, error) {
	const query = `SELECT id, staff_id, amount, month, payment_date, payment_method, slip_number, remarks, created_at
        FROM salary_payments WHERE staff_id = $1 ORDER BY payment_date DESC, created_at DESC`
	var payments []models.SalaryPayment
	if err := r.db.SelectContext(ctx, &payments, query, staffID); err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	return payments, nil
}

// SumByStaff re-derives the paid total for one staff member.
func (r *SalaryPaymentRepository) SumByStaff(ctx context.Context, staffID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM salary_payments WHERE staff_id = $1`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, staffID); err != nil {
		return 0, fmt.Errorf("sum salary payments: %w", err)
	}
	return total, nil
}

// TotalPaid sums all recorded salary payments.
func (r *SalaryPaymentRepository) TotalPaid(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM salary_payments`); err != nil {
		return 0, fmt.Errorf("total salary paid: %w", err)
	}
	return total, nil
}

// List returns salary ledger entries with staff context, optionally
// filtered to one month label.
func (r *SalaryPaymentRepository) List(ctx context.Context, month string) ([]models.SalaryPaymentDetail, error) {
	query := `SELECT p.id, p.staff_id, p.amount, p.month, p.payment_date, p.payment_method, p.slip_number, p.remarks, p.created_at,
        st.staff_id AS staff_code, st.full_name AS staff_name, st.role AS staff_role
        FROM salary_payments p JOIN staff st ON st.id = p.staff_id`
	args := []interface{}{}
	if month != "" {
		query += " WHERE p.month = $1"
		args = append(args, month)
	}
	query += " ORDER BY p.payment_date DESC, p.created_at DESC"

	var payments []models.SalaryPaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list salary ledger: %w", err)
	}
	return payments, nil
}
