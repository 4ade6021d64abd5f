package models

import "time"

// PaymentStatus is derived from a student's dues and ledger total. It is
// computed on demand and never stored.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

// FeePayment is an append-only ledger entry against a student's dues.
// Rows are inserted once and never updated or deleted through the API.
type FeePayment struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	Amount        int64         `db:"amount" json:"amount"`
	PaymentDate   time.Time     `db:"payment_date" json:"payment_date"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	ReceiptNumber string        `db:"receipt_number" json:"receipt_number"`
	AcademicYear  string        `db:"academic_year" json:"academic_year"`
	Remarks       *string       `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// FeePaymentDetail joins a ledger entry with roster context for listings.
type FeePaymentDetail struct {
	FeePayment
	StudentCode     string `db:"student_code" json:"student_code"`
	StudentName     string `db:"student_name" json:"student_name"`
	StudentClass    string `db:"student_class" json:"student_class"`
	StudentSection  string `db:"student_section" json:"student_section"`
	StudentTotalFee int64  `db:"student_total_fee" json:"student_total_fee"`
}

// FeePaymentFilter captures listing criteria for fee transactions.
type FeePaymentFilter struct {
	Search       string
	Class        string
	AcademicYear string
	Page         int
	PageSize     int
}

// SalaryPayment is an append-only ledger entry for a staff salary
// disbursement. Month is a free-text label such as "January 2025".
type SalaryPayment struct {
	ID            string        `db:"id" json:"id"`
	StaffID       string        `db:"staff_id" json:"staff_id"`
	Amount        int64         `db:"amount" json:"amount"`
	Month         string        `db:"month" json:"month"`
	PaymentDate   time.Time     `db:"payment_date" json:"payment_date"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	SlipNumber    string        `db:"slip_number" json:"slip_number"`
	Remarks       *string       `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// SalaryPaymentDetail joins a salary entry with the staff record.
type SalaryPaymentDetail struct {
	SalaryPayment
	StaffCode string `db:"staff_code" json:"staff_code"`
	StaffName string `db:"staff_name" json:"staff_name"`
	StaffRole string `db:"staff_role" json:"staff_role"`
}

// ValidPaymentMethod reports whether the given method is accepted.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodOnline, PaymentMethodCheque:
		return true
	}
	return false
}
