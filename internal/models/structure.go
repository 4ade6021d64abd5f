package models

import "time"

// FeeStructure holds the itemized tuition fee schedule for one class in
// one academic year. TotalFee is a stored sum of the components and is
// recomputed on every write, never edited independently.
type FeeStructure struct {
	ID           string    `db:"id" json:"id"`
	Class        string    `db:"class" json:"class"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	TuitionFee   int64     `db:"tuition_fee" json:"tuition_fee"`
	AdmissionFee int64     `db:"admission_fee" json:"admission_fee"`
	ExamFee      int64     `db:"exam_fee" json:"exam_fee"`
	LibraryFee   int64     `db:"library_fee" json:"library_fee"`
	SportsFee    int64     `db:"sports_fee" json:"sports_fee"`
	TransportFee int64     `db:"transport_fee" json:"transport_fee"`
	MiscFee      int64     `db:"misc_fee" json:"misc_fee"`
	TotalFee     int64     `db:"total_fee" json:"total_fee"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ComponentSum returns the sum of the itemized tuition components.
func (s FeeStructure) ComponentSum() int64 {
	return s.TuitionFee + s.AdmissionFee + s.ExamFee + s.LibraryFee + s.SportsFee + s.TransportFee + s.MiscFee
}

// BookFeeStructure holds the itemized book fee schedule for one class in
// one academic year, with the same derived-total discipline.
type BookFeeStructure struct {
	ID           string    `db:"id" json:"id"`
	Class        string    `db:"class" json:"class"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	ReadingBooks int64     `db:"reading_books" json:"reading_books"`
	TextBooks    int64     `db:"text_books" json:"text_books"`
	PracticeBook int64     `db:"practice_books" json:"practice_books"`
	DairyFee     int64     `db:"dairy_fee" json:"dairy_fee"`
	IDCardFee    int64     `db:"id_card_fee" json:"id_card_fee"`
	CoversFee    int64     `db:"covers_fee" json:"covers_fee"`
	Notebooks    int64     `db:"notebooks" json:"notebooks"`
	MiscFee      int64     `db:"misc_fee" json:"misc_fee"`
	TotalFee     int64     `db:"total_fee" json:"total_fee"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ComponentSum returns the sum of the itemized book components.
func (s BookFeeStructure) ComponentSum() int64 {
	return s.ReadingBooks + s.TextBooks + s.PracticeBook + s.DairyFee + s.IDCardFee + s.CoversFee + s.Notebooks + s.MiscFee
}
