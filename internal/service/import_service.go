package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type rosterImporter interface {
	ImportRoster(ctx context.Context, students []models.Student) error
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
}

// ImportResult reports the outcome of a roster import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Rejected []string `json:"rejected,omitempty"`
}

// ImportService loads a student roster from CSV. Validation runs row by
// row before anything is written; the insert itself is one transaction,
// so a failed import never leaves a partial roster behind.
type ImportService struct {
	students rosterImporter
	logger   *zap.Logger
}

// NewImportService constructs ImportService.
func NewImportService(students rosterImporter, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, logger: logger}
}

var rosterHeaders = []string{"student_id", "full_name", "class", "section", "roll_no", "parent_name", "parent_phone", "total_fee", "academic_year"}

// ImportRoster parses the CSV stream and inserts all rows atomically.
// Any invalid row rejects the whole file so the operator can fix and
// resubmit rather than reconcile a half-applied roster.
func (s *ImportService) ImportRoster(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable csv file")
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv header")
	}

	var students []models.Student
	var rejected []string
	seen := map[string]bool{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		student, err := s.parseRow(ctx, record, index, seen)
		if err != nil {
			rejected = append(rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		students = append(students, *student)
	}

	if len(rejected) > 0 {
		return &ImportResult{Rejected: rejected}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%d rows rejected, nothing imported", len(rejected)))
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rows to import")
	}

	if err := s.students.ImportRoster(ctx, students); err != nil {
		return nil, bulkError(err, "failed to import roster")
	}
	s.logger.Info("roster imported", zap.Int("students", len(students)))
	return &ImportResult{Imported: len(students)}, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range rosterHeaders {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return index, nil
}

func (s *ImportService) parseRow(ctx context.Context, record []string, index map[string]int, seen map[string]bool) (*models.Student, error) {
	get := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	code := get("student_id")
	if code == "" {
		return nil, fmt.Errorf("student_id is required")
	}
	if seen[code] {
		return nil, fmt.Errorf("duplicate student_id %q in file", code)
	}
	seen[code] = true

	exists, err := s.students.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, fmt.Errorf("check student_id %q: %w", code, err)
	}
	if exists {
		return nil, fmt.Errorf("student_id %q already enrolled", code)
	}

	name := get("full_name")
	if name == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	class := get("class")
	if finance.ClassRank(class) < 0 {
		return nil, fmt.Errorf("unknown class %q", class)
	}
	year := get("academic_year")
	if year == "" {
		return nil, fmt.Errorf("academic_year is required")
	}

	rollNo := 0
	if raw := get("roll_no"); raw != "" {
		rollNo, err = strconv.Atoi(raw)
		if err != nil || rollNo < 0 {
			return nil, fmt.Errorf("invalid roll_no %q", raw)
		}
	}
	var totalFee int64
	if raw := get("total_fee"); raw != "" {
		totalFee, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || totalFee < 0 {
			return nil, fmt.Errorf("invalid total_fee %q", raw)
		}
	}

	return &models.Student{
		StudentID:    code,
		FullName:     name,
		Class:        class,
		Section:      get("section"),
		RollNo:       rollNo,
		ParentName:   get("parent_name"),
		ParentPhone:  get("parent_phone"),
		TotalFee:     totalFee,
		AcademicYear: year,
		Status:       models.StudentStatusActive,
	}, nil
}
