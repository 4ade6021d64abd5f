package models

import "time"

// SchoolSettings is the singleton configuration row. The receipt and
// slip counters are monotone and advanced only through an atomic
// store-side increment, never assigned from client reads.
type SchoolSettings struct {
	ID            string    `db:"id" json:"id"`
	SchoolName    string    `db:"school_name" json:"school_name"`
	SchoolAddress *string   `db:"school_address" json:"school_address,omitempty"`
	SchoolPhone   *string   `db:"school_phone" json:"school_phone,omitempty"`
	ReceiptPrefix string    `db:"receipt_prefix" json:"receipt_prefix"`
	SlipPrefix    string    `db:"slip_prefix" json:"slip_prefix"`
	LastReceiptNo int64     `db:"last_receipt_no" json:"last_receipt_no"`
	LastSlipNo    int64     `db:"last_slip_no" json:"last_slip_no"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
