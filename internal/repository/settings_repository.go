package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// SettingsRepository manages the singleton school_settings row. The
// receipt and slip counters advance only through the atomic
// increment-and-return statements below, so two concurrent payments can
// never observe the same sequence value.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches the singleton settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SchoolSettings, error) {
	const query = `SELECT id, school_name, school_address, school_phone, receipt_prefix, slip_prefix, last_receipt_no, last_slip_no, academic_year, updated_at
        FROM school_settings LIMIT 1`
	var settings models.SchoolSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update writes the editable settings fields. The counters are excluded:
// they only move through NextReceiptSeq/NextSlipSeq.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.SchoolSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `UPDATE school_settings SET school_name = :school_name, school_address = :school_address, school_phone = :school_phone,
        receipt_prefix = :receipt_prefix, slip_prefix = :slip_prefix, academic_year = :academic_year, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

type counterRow struct {
	Prefix string `db:"prefix"`
	Seq    int64  `db:"seq"`
}

// NextReceiptSeq atomically advances the receipt counter and returns the
// prefix together with the new sequence value. The increment and read
// are one statement, never a client-side read-then-write.
func (r *SettingsRepository) NextReceiptSeq(ctx context.Context) (prefix string, seq int64, err error) {
	const query = `UPDATE school_settings SET last_receipt_no = last_receipt_no + 1, updated_at = $1
        RETURNING receipt_prefix AS prefix, last_receipt_no AS seq`
	var row counterRow
	if err := r.db.GetContext(ctx, &row, query, time.Now().UTC()); err != nil {
		return "", 0, fmt.Errorf("advance receipt counter: %w", err)
	}
	return row.Prefix, row.Seq, nil
}

// NextSlipSeq atomically advances the slip counter.
func (r *SettingsRepository) NextSlipSeq(ctx context.Context) (prefix string, seq int64, err error) {
	const query = `UPDATE school_settings SET last_slip_no = last_slip_no + 1, updated_at = $1
        RETURNING slip_prefix AS prefix, last_slip_no AS seq`
	var row counterRow
	if err := r.db.GetContext(ctx, &row, query, time.Now().UTC()); err != nil {
		return "", 0, fmt.Errorf("advance slip counter: %w", err)
	}
	return row.Prefix, row.Seq, nil
}
