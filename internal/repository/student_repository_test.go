package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "full_name", "class", "section", "roll_no", "parent_name", "parent_phone", "parent_email", "address", "total_fee", "total_book_fee", "academic_year", "status", "admission_date", "created_at", "updated_at"}).
		AddRow("1", "STU001", "Asha Verma", "5th", "A", 1, "Raj Verma", "9876500001", nil, nil, int64(12000), int64(2000), "2025-26", "active", nil, now, now)
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM students WHERE 1=1 AND class = \\$1 ORDER BY full_name ASC LIMIT 20 OFFSET 0").
		WithArgs("5th").
		WillReturnRows(studentRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students WHERE 1=1 AND class = \\$1").
		WithArgs("5th").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Class: "5th"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListClampsOversizedPage(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM students WHERE 1=1 ORDER BY full_name ASC LIMIT 100 OFFSET 0").
		WillReturnRows(studentRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students WHERE 1=1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(150))

	_, total, err := repo.List(context.Background(), models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 150, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindDuesByID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "full_name", "class", "section", "roll_no", "parent_name", "parent_phone", "parent_email", "address", "total_fee", "total_book_fee", "academic_year", "status", "admission_date", "created_at", "updated_at", "total_paid"}).
		AddRow("1", "STU001", "Asha Verma", "5th", "A", 1, "Raj Verma", "9876500001", nil, nil, int64(12000), int64(2000), "2025-26", "active", nil, now, now, int64(5000))

	mock.ExpectQuery("LEFT JOIN fee_payments p ON p.student_id = s.id").
		WithArgs("1").
		WillReturnRows(rows)

	dues, err := repo.FindDuesByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), dues.TotalFee)
	assert.Equal(t, int64(5000), dues.TotalPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCascadeTuitionFee(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET total_fee = \\$3, updated_at = \\$4").
		WithArgs("5th", "2025-26", int64(12000), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 30))

	count, err := repo.CascadeTuitionFee(context.Background(), "5th", "2025-26", 12000)
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryPromoteAll(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students s SET").
		WithArgs("2025-26", "2026-27", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 245))

	count, err := repo.PromoteAll(context.Background(), "2025-26", "2026-27", []string{"Nursery", "LKG", "UKG", "1st"})
	require.NoError(t, err)
	assert.Equal(t, int64(245), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryImportRosterRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ImportRoster(context.Background(), []models.Student{
		{StudentID: "STU001", FullName: "Asha", Class: "5th", AcademicYear: "2025-26", Status: models.StudentStatusActive},
		{StudentID: "STU002", FullName: "Dev", Class: "LKG", AcademicYear: "2025-26", Status: models.StudentStatusActive},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students WHERE id = \\$1").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
