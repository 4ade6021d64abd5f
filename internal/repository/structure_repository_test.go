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

func newStructureMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStructureRepositoryUpsertFee(t *testing.T) {
	db, mock, cleanup := newStructureMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	mock.ExpectExec("INSERT INTO fee_structures (.+) ON CONFLICT \\(class, academic_year\\) DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	structure := &models.FeeStructure{Class: "5th", AcademicYear: "2025-26", TuitionFee: 8000, TotalFee: 8000}
	err := repo.UpsertFee(context.Background(), structure)
	require.NoError(t, err)
	assert.NotEmpty(t, structure.ID)
	assert.False(t, structure.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStructureRepositoryFindFee(t *testing.T) {
	db, mock, cleanup := newStructureMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "class", "academic_year", "tuition_fee", "admission_fee", "exam_fee", "library_fee", "sports_fee", "transport_fee", "misc_fee", "total_fee", "created_at", "updated_at"}).
		AddRow("1", "5th", "2025-26", int64(8000), int64(1000), int64(500), int64(0), int64(0), int64(0), int64(0), int64(9500), now, now)

	mock.ExpectQuery("FROM fee_structures WHERE class = \\$1 AND academic_year = \\$2").
		WithArgs("5th", "2025-26").
		WillReturnRows(rows)

	structure, err := repo.FindFee(context.Background(), "5th", "2025-26")
	require.NoError(t, err)
	assert.Equal(t, int64(9500), structure.TotalFee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStructureRepositoryUpsertBook(t *testing.T) {
	db, mock, cleanup := newStructureMock(t)
	defer cleanup()
	repo := NewStructureRepository(db)

	mock.ExpectExec("INSERT INTO book_fee_structures (.+) ON CONFLICT \\(class, academic_year\\) DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	structure := &models.BookFeeStructure{Class: "UKG", AcademicYear: "2025-26", ReadingBooks: 1200, TotalFee: 1200}
	err := repo.UpsertBook(context.Background(), structure)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
