package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingsRepositoryNextReceiptSeq(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("UPDATE school_settings SET last_receipt_no = last_receipt_no \\+ 1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "seq"}).AddRow("REC", int64(100)))

	prefix, seq, err := repo.NextReceiptSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "REC", prefix)
	assert.Equal(t, int64(100), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryNextSlipSeq(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("UPDATE school_settings SET last_slip_no = last_slip_no \\+ 1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "seq"}).AddRow("SLP", int64(7)))

	prefix, seq, err := repo.NextSlipSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SLP", prefix)
	assert.Equal(t, int64(7), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT id, school_name, school_address, school_phone, receipt_prefix, slip_prefix, last_receipt_no, last_slip_no, academic_year, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "school_name", "school_address", "school_phone", "receipt_prefix", "slip_prefix", "last_receipt_no", "last_slip_no", "academic_year", "updated_at"}).
			AddRow("1", "Sunrise Public School", nil, nil, "REC", "SLP", int64(42), int64(9), "2025-26", time.Now()))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "REC", settings.ReceiptPrefix)
	assert.Equal(t, int64(42), settings.LastReceiptNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}
