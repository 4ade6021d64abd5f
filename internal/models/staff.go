package models

import "time"

// Staff represents an employee record in the staff table.
type Staff struct {
	ID            string     `db:"id" json:"id"`
	StaffID       string     `db:"staff_id" json:"staff_id"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          string     `db:"role" json:"role"`
	Subject       *string    `db:"subject" json:"subject,omitempty"`
	MonthlySalary int64      `db:"monthly_salary" json:"monthly_salary"`
	JoiningDate   *time.Time `db:"joining_date" json:"joining_date,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff.
type StaffFilter struct {
	Search    string
	Role      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
