package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// FeePaymentRepository manages the append-only fee ledger. Entries are
// inserted once and never updated or deleted here.
type FeePaymentRepository struct {
	db *sqlx.DB
}

// NewFeePaymentRepository constructs a FeePaymentRepository.
func NewFeePaymentRepository(db *sqlx.DB) *FeePaymentRepository {
	return &FeePaymentRepository{db: db}
}

// Create appends a ledger entry.
func (r *FeePaymentRepository) Create(ctx context.Context, payment *models.FeePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO fee_payments (id, student_id, amount, payment_date, payment_method, receipt_number, academic_year, remarks, created_at)
        VALUES (:id, :student_id, :amount, :payment_date, :payment_method, :receipt_number, :academic_year, :remarks, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create fee payment: %w", err)
	}
	return nil
}

// ListByStudent returns a student's payment history, most recent payment
// date first with insertion order as the stable secondary key.
func (r *FeePaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	const query = `SELECT id, student_id, amount, payment_date, payment_method, receipt_number, academic_year, remarks, created_at
        FROM fee_payments WHERE student_id = $1 ORDER BY payment_date DESC, created_at DESC`
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}
	return payments, nil
}

// SumByStudent re-derives the paid total for one student by summing the
// ledger. Never cached across requests.
func (r *FeePaymentRepository) SumByStudent(ctx context.Context, studentID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM fee_payments WHERE student_id = $1`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("sum fee payments: %w", err)
	}
	return total, nil
}

// TotalCollected sums all recorded fee payments.
func (r *FeePaymentRepository) TotalCollected(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM fee_payments`); err != nil {
		return 0, fmt.Errorf("total collected: %w", err)
	}
	return total, nil
}

// List returns fee transactions with roster context.
func (r *FeePaymentRepository) List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePaymentDetail, int, error) {
	base := `FROM fee_payments p JOIN students s ON s.id = p.student_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("p.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(p.receipt_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.amount, p.payment_date, p.payment_method, p.receipt_number, p.academic_year, p.remarks, p.created_at,
        s.student_id AS student_code, s.full_name AS student_name, s.class AS student_class, s.section AS student_section, s.total_fee AS student_total_fee
        %s ORDER BY p.payment_date DESC, p.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var payments []models.FeePaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee transactions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee transactions: %w", err)
	}
	return payments, total, nil
}

// FindDetailByID fetches one ledger entry with roster context, used for
// receipt rendering.
func (r *FeePaymentRepository) FindDetailByID(ctx context.Context, id string) (*models.FeePaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.amount, p.payment_date, p.payment_method, p.receipt_number, p.academic_year, p.remarks, p.created_at,
        s.student_id AS student_code, s.full_name AS student_name, s.class AS student_class, s.section AS student_section, s.total_fee AS student_total_fee
        FROM fee_payments p JOIN students s ON s.id = p.student_id WHERE p.id = $1`
	var detail models.FeePaymentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}
