package models

import "time"

// StudentStatus enumerates roster lifecycle states.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Student represents a roster record in the students table.
type Student struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	FullName      string        `db:"full_name" json:"full_name"`
	Class         string        `db:"class" json:"class"`
	Section       string        `db:"section" json:"section"`
	RollNo        int           `db:"roll_no" json:"roll_no"`
	ParentName    string        `db:"parent_name" json:"parent_name"`
	ParentPhone   string        `db:"parent_phone" json:"parent_phone"`
	ParentEmail   *string       `db:"parent_email" json:"parent_email,omitempty"`
	Address       *string       `db:"address" json:"address,omitempty"`
	TotalFee      int64         `db:"total_fee" json:"total_fee"`
	TotalBookFee  int64         `db:"total_book_fee" json:"total_book_fee"`
	AcademicYear  string        `db:"academic_year" json:"academic_year"`
	Status        StudentStatus `db:"status" json:"status"`
	AdmissionDate *time.Time    `db:"admission_date" json:"admission_date,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search       string
	Class        string
	AcademicYear string
	Status       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// StudentDues pairs a student with ledger-derived fee aggregates. The
// paid/pending/status fields are computed on demand and never persisted.
type StudentDues struct {
	Student
	TotalPaid     int64         `db:"total_paid" json:"total_paid"`
	PendingAmount int64         `json:"pending_amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}
