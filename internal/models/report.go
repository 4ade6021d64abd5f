package models

// ClassSummary aggregates fee collection figures for a single class.
// Pending is summed per student before aggregation so an overpayment by
// one student never offsets another student's shortfall.
type ClassSummary struct {
	Class          string `json:"class"`
	TotalDue       int64  `json:"total_due"`
	Collected      int64  `json:"collected"`
	Pending        int64  `json:"pending"`
	CollectionRate int    `json:"collection_rate"`
}

// PendingStudent is a roster entry with an outstanding balance.
type PendingStudent struct {
	ID            string `db:"id" json:"id"`
	StudentID     string `db:"student_id" json:"student_id"`
	FullName      string `db:"full_name" json:"full_name"`
	Class         string `db:"class" json:"class"`
	Section       string `db:"section" json:"section"`
	ParentPhone   string `db:"parent_phone" json:"parent_phone"`
	TotalFee      int64  `db:"total_fee" json:"total_fee"`
	TotalPaid     int64  `db:"total_paid" json:"total_paid"`
	PendingAmount int64  `json:"pending_amount"`
}

// SalaryReport wraps salary ledger entries with a computed total.
type SalaryReport struct {
	Month    string                `json:"month,omitempty"`
	Payments []SalaryPaymentDetail `json:"payments"`
	Total    int64                 `json:"total"`
}

// StudentLedgerRow is the per-student slice of the ledger used by the
// reporting aggregator. Paid totals are re-derived on every read.
type StudentLedgerRow struct {
	ID        string `db:"id"`
	Class     string `db:"class"`
	TotalFee  int64  `db:"total_fee"`
	TotalPaid int64  `db:"total_paid"`
}

// DashboardSummary is the admin overview payload.
type DashboardSummary struct {
	TotalStudents   int   `json:"total_students"`
	ActiveStudents  int   `json:"active_students"`
	TotalStaff      int   `json:"total_staff"`
	TotalDue        int64 `json:"total_due"`
	TotalCollected  int64 `json:"total_collected"`
	TotalPending    int64 `json:"total_pending"`
	CollectionRate  int   `json:"collection_rate"`
	TotalSalaryPaid int64 `json:"total_salary_paid"`
}
