package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type fakeRosterImporter struct {
	imported []models.Student
	existing map[string]bool
	err      error
}

func (f *fakeRosterImporter) ImportRoster(_ context.Context, students []models.Student) error {
	if f.err != nil {
		return f.err
	}
	f.imported = append(f.imported, students...)
	return nil
}

func (f *fakeRosterImporter) ExistsByCode(_ context.Context, code string, _ string) (bool, error) {
	return f.existing[code], nil
}

const rosterCSVHeader = "student_id,full_name,class,section,roll_no,parent_name,parent_phone,total_fee,academic_year\n"

func TestImportRosterHappyPath(t *testing.T) {
	store := &fakeRosterImporter{}
	svc := NewImportService(store, nil)

	csv := rosterCSVHeader +
		"STU001,Asha Verma,5th,A,1,Raj Verma,9876500001,12000,2025-26\n" +
		"STU002,Dev Patel,LKG,B,2,Mina Patel,9876500002,8000,2025-26\n"

	result, err := svc.ImportRoster(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, store.imported, 2)
	assert.Equal(t, models.StudentStatusActive, store.imported[0].Status)
	assert.Equal(t, int64(12000), store.imported[0].TotalFee)
}

func TestImportRosterRejectsWholeFileOnBadRow(t *testing.T) {
	store := &fakeRosterImporter{}
	svc := NewImportService(store, nil)

	csv := rosterCSVHeader +
		"STU001,Asha Verma,5th,A,1,Raj Verma,9876500001,12000,2025-26\n" +
		"STU002,Dev Patel,13th,B,2,Mina Patel,9876500002,8000,2025-26\n"

	result, err := svc.ImportRoster(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.NotNil(t, result)
	assert.Len(t, result.Rejected, 1)
	assert.Empty(t, store.imported)
}

func TestImportRosterRejectsDuplicateInFile(t *testing.T) {
	store := &fakeRosterImporter{}
	svc := NewImportService(store, nil)

	csv := rosterCSVHeader +
		"STU001,Asha Verma,5th,A,1,Raj Verma,9876500001,12000,2025-26\n" +
		"STU001,Asha Clone,5th,A,2,Raj Verma,9876500001,12000,2025-26\n"

	_, err := svc.ImportRoster(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Empty(t, store.imported)
}

func TestImportRosterRejectsAlreadyEnrolled(t *testing.T) {
	store := &fakeRosterImporter{existing: map[string]bool{"STU001": true}}
	svc := NewImportService(store, nil)

	csv := rosterCSVHeader +
		"STU001,Asha Verma,5th,A,1,Raj Verma,9876500001,12000,2025-26\n"

	_, err := svc.ImportRoster(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Empty(t, store.imported)
}

func TestImportRosterRejectsMissingColumns(t *testing.T) {
	svc := NewImportService(&fakeRosterImporter{}, nil)

	_, err := svc.ImportRoster(context.Background(), strings.NewReader("student_id,full_name\nSTU001,Asha\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
