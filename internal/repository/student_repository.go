package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// StudentRepository manages persistence for roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_id, full_name, class, section, roll_no, parent_name, parent_phone, parent_email, address,
        total_fee, total_book_fee, academic_year, status, admission_date, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(student_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"student_id": "student_id",
		"class":      "class",
		"created_at": "created_at",
	}
	if sortBy == "" {
		sortBy = "full_name"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
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

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d`, studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDuesByID fetches a student together with the summed ledger amount.
// The paid total is re-derived from fee_payments on every call.
func (r *StudentRepository) FindDuesByID(ctx context.Context, id string) (*models.StudentDues, error) {
	const query = `SELECT s.id, s.student_id, s.full_name, s.class, s.section, s.roll_no, s.parent_name, s.parent_phone, s.parent_email, s.address,
        s.total_fee, s.total_book_fee, s.academic_year, s.status, s.admission_date, s.created_at, s.updated_at,
        COALESCE(SUM(p.amount), 0) AS total_paid
        FROM students s
        LEFT JOIN fee_payments p ON p.student_id = s.id
        WHERE s.id = $1
        GROUP BY s.id`
	var dues models.StudentDues
	if err := r.db.GetContext(ctx, &dues, query, id); err != nil {
		return nil, err
	}
	return &dues, nil
}

// ExistsByCode checks if a student with the given human code exists,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE student_id = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student code: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_id, full_name, class, section, roll_no, parent_name, parent_phone, parent_email, address,
        total_fee, total_book_fee, academic_year, status, admission_date, created_at, updated_at)
        VALUES (:id, :student_id, :full_name, :class, :section, :roll_no, :parent_name, :parent_phone, :parent_email, :address,
        :total_fee, :total_book_fee, :academic_year, :status, :admission_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_id = :student_id, full_name = :full_name, class = :class, section = :section,
        roll_no = :roll_no, parent_name = :parent_name, parent_phone = :parent_phone, parent_email = :parent_email,
        address = :address, total_fee = :total_fee, total_book_fee = :total_book_fee, academic_year = :academic_year,
        status = :status, admission_date = :admission_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. The store cascades the delete onto the
// student's fee payments.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CascadeTuitionFee overwrites total_fee for every active student in the
// given class and academic year as one set-based statement, so the
// cascade either applies to the whole cohort or not at all. Returns the
// number of rows updated.
func (r *StudentRepository) CascadeTuitionFee(ctx context.Context, class, academicYear string, totalFee int64) (int64, error) {
	const query = `UPDATE students SET total_fee = $3, updated_at = $4
        WHERE class = $1 AND academic_year = $2 AND status = 'active'`
	res, err := r.db.ExecContext(ctx, query, class, academicYear, totalFee, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cascade tuition fee: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cascade tuition fee count: %w", err)
	}
	return count, nil
}

// CascadeBookFee overwrites total_book_fee with the same discipline as
// CascadeTuitionFee.
func (r *StudentRepository) CascadeBookFee(ctx context.Context, class, academicYear string, totalFee int64) (int64, error) {
	const query = `UPDATE students SET total_book_fee = $3, updated_at = $4
        WHERE class = $1 AND academic_year = $2 AND status = 'active'`
	res, err := r.db.ExecContext(ctx, query, class, academicYear, totalFee, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cascade book fee: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cascade book fee count: %w", err)
	}
	return count, nil
}

// PromoteAll advances every active student from fromYear to toYear in a
// single set-based statement: the class steps forward one position in
// classOrder, while students in the terminal class keep their class and
// year and are marked inactive. A mid-operation failure rolls the whole
// statement back, so the cohort is never left partially promoted.
func (r *StudentRepository) PromoteAll(ctx context.Context, fromYear, toYear string, classOrder []string) (int64, error) {
	const query = `UPDATE students s SET
            class = COALESCE(n.next_class, s.class),
            academic_year = CASE WHEN n.next_class IS NULL THEN s.academic_year ELSE $2 END,
            status = CASE WHEN n.next_class IS NULL THEN 'inactive' ELSE s.status END,
            updated_at = $4
        FROM (
            SELECT cur.cls AS current_class, nxt.cls AS next_class
            FROM unnest($3::text[]) WITH ORDINALITY AS cur(cls, pos)
            LEFT JOIN unnest($3::text[]) WITH ORDINALITY AS nxt(cls, pos) ON nxt.pos = cur.pos + 1
        ) n
        WHERE s.academic_year = $1 AND s.status = 'active' AND s.class = n.current_class`
	res, err := r.db.ExecContext(ctx, query, fromYear, toYear, pq.Array(classOrder), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("promote students: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("promote students count: %w", err)
	}
	return count, nil
}

// ImportRoster inserts a batch of students inside one transaction so a
// failed import never leaves a partial roster behind.
func (r *StudentRepository) ImportRoster(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	const query = `INSERT INTO students (id, student_id, full_name, class, section, roll_no, parent_name, parent_phone, parent_email, address,
        total_fee, total_book_fee, academic_year, status, admission_date, created_at, updated_at)
        VALUES (:id, :student_id, :full_name, :class, :section, :roll_no, :parent_name, :parent_phone, :parent_email, :address,
        :total_fee, :total_book_fee, :academic_year, :status, :admission_date, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
		if students[i].CreatedAt.IsZero() {
			students[i].CreatedAt = now
		}
		students[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, students[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import student %s: %w", students[i].StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Counts returns the total and active roster sizes.
func (r *StudentRepository) Counts(ctx context.Context) (total int, active int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'active') AS active FROM students`
	row := struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("count roster: %w", err)
	}
	return row.Total, row.Active, nil
}
