package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// StructureRepository manages the per-class-per-year fee schedules.
// Structures are keyed uniquely by (class, academic_year); writes go
// through an upsert so a repeated key replaces the row in place.
type StructureRepository struct {
	db *sqlx.DB
}

// NewStructureRepository constructs a StructureRepository.
func NewStructureRepository(db *sqlx.DB) *StructureRepository {
	return &StructureRepository{db: db}
}

// UpsertFee writes a tuition fee structure, replacing any existing row
// for the same (class, academic_year). The stored total is always the
// component sum computed by the caller at write time.
func (r *StructureRepository) UpsertFee(ctx context.Context, s *models.FeeStructure) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	const query = `INSERT INTO fee_structures (id, class, academic_year, tuition_fee, admission_fee, exam_fee, library_fee, sports_fee, transport_fee, misc_fee, total_fee, created_at, updated_at)
        VALUES (:id, :class, :academic_year, :tuition_fee, :admission_fee, :exam_fee, :library_fee, :sports_fee, :transport_fee, :misc_fee, :total_fee, :created_at, :updated_at)
        ON CONFLICT (class, academic_year) DO UPDATE SET
            tuition_fee = EXCLUDED.tuition_fee,
            admission_fee = EXCLUDED.admission_fee,
            exam_fee = EXCLUDED.exam_fee,
            library_fee = EXCLUDED.library_fee,
            sports_fee = EXCLUDED.sports_fee,
            transport_fee = EXCLUDED.transport_fee,
            misc_fee = EXCLUDED.misc_fee,
            total_fee = EXCLUDED.total_fee,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("upsert fee structure: %w", err)
	}
	return nil
}

// FindFee fetches the tuition structure for one class and year.
func (r *StructureRepository) FindFee(ctx context.Context, class, academicYear string) (*models.FeeStructure, error) {
	const query = `SELECT id, class, academic_year, tuition_fee, admission_fee, exam_fee, library_fee, sports_fee, transport_fee, misc_fee, total_fee, created_at, updated_at
        FROM fee_structures WHERE class = $1 AND academic_year = $2`
	var s models.FeeStructure
	if err := r.db.GetContext(ctx, &s, query, class, academicYear); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListFee returns tuition structures, optionally scoped to one year.
func (r *StructureRepository) ListFee(ctx context.Context, academicYear string) ([]models.FeeStructure, error) {
	query := `SELECT id, class, academic_year, tuition_fee, admission_fee, exam_fee, library_fee, sports_fee, transport_fee, misc_fee, total_fee, created_at, updated_at
        FROM fee_structures`
	args := []interface{}{}
	if academicYear != "" {
		query += " WHERE academic_year = $1"
		args = append(args, academicYear)
	}
	query += " ORDER BY academic_year DESC, class"

	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}

// UpsertBook writes a book fee structure with the same key discipline as
// UpsertFee.
func (r *StructureRepository) UpsertBook(ctx context.Context, s *models.BookFeeStructure) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	const query = `INSERT INTO book_fee_structures (id, class, academic_year, reading_books, text_books, practice_books, dairy_fee, id_card_fee, covers_fee, notebooks, misc_fee, total_fee, created_at, updated_at)
        VALUES (:id, :class, :academic_year, :reading_books, :text_books, :practice_books, :dairy_fee, :id_card_fee, :covers_fee, :notebooks, :misc_fee, :total_fee, :created_at, :updated_at)
        ON CONFLICT (class, academic_year) DO UPDATE SET
            reading_books = EXCLUDED.reading_books,
            text_books = EXCLUDED.text_books,
            practice_books = EXCLUDED.practice_books,
            dairy_fee = EXCLUDED.dairy_fee,
            id_card_fee = EXCLUDED.id_card_fee,
            covers_fee = EXCLUDED.covers_fee,
            notebooks = EXCLUDED.notebooks,
            misc_fee = EXCLUDED.misc_fee,
            total_fee = EXCLUDED.total_fee,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("upsert book fee structure: %w", err)
	}
	return nil
}

// FindBook fetches the book structure for one class and year.
func (r *StructureRepository) FindBook(ctx context.Context, class, academicYear string) (*models.BookFeeStructure, error) {
	const query = `SELECT id, class, academic_year, reading_books, text_books, practice_books, dairy_fee, id_card_fee, covers_fee, notebooks, misc_fee, total_fee, created_at, updated_at
        FROM book_fee_structures WHERE class = $1 AND academic_year = $2`
	var s models.BookFeeStructure
	if err := r.db.GetContext(ctx, &s, query, class, academicYear); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListBook returns book structures, optionally scoped to one year.
func (r *StructureRepository) ListBook(ctx context.Context, academicYear string) ([]models.BookFeeStructure, error) {
	query := `SELECT id, class, academic_year, reading_books, text_books, practice_books, dairy_fee, id_card_fee, covers_fee, notebooks, misc_fee, total_fee, created_at, updated_at
        FROM book_fee_structures`
	args := []interface{}{}
	if academicYear != "" {
		query += " WHERE academic_year = $1"
		args = append(args, academicYear)
	}
	query += " ORDER BY academic_year DESC, class"

	var structures []models.BookFeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, fmt.Errorf("list book fee structures: %w", err)
	}
	return structures, nil
}
