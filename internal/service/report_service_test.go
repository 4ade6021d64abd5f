package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
)

type fakeLedgerReader struct {
	rows    []models.StudentLedgerRow
	pending []models.PendingStudent
	err     error
}

func (f *fakeLedgerReader) StudentLedger(context.Context) ([]models.StudentLedgerRow, error) {
	return f.rows, f.err
}

func (f *fakeLedgerReader) PendingStudents(context.Context) ([]models.PendingStudent, error) {
	return f.pending, f.err
}

func TestClassWiseSummaryPendingPerStudent(t *testing.T) {
	// One student overpaid by 200, the other short by 700. The class
	// pending must be 700, not 500: overpayment never offsets another
	// student's shortfall.
	reader := &fakeLedgerReader{rows: []models.StudentLedgerRow{
		{ID: "a", Class: "5th", TotalFee: 1000, TotalPaid: 1200},
		{ID: "b", Class: "5th", TotalFee: 1000, TotalPaid: 300},
	}}
	svc := NewReportService(reader, nil)

	summaries, err := svc.ClassWiseSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "5th", summary.Class)
	assert.Equal(t, int64(2000), summary.TotalDue)
	assert.Equal(t, int64(1500), summary.Collected)
	assert.Equal(t, int64(700), summary.Pending)
	assert.Equal(t, 75, summary.CollectionRate)
}

func TestClassWiseSummaryOrdersByProgression(t *testing.T) {
	reader := &fakeLedgerReader{rows: []models.StudentLedgerRow{
		{ID: "a", Class: "10th", TotalFee: 1000},
		{ID: "b", Class: "Nursery", TotalFee: 1000},
		{ID: "c", Class: "1st", TotalFee: 1000},
		{ID: "d", Class: "LKG", TotalFee: 1000},
	}}
	svc := NewReportService(reader, nil)

	summaries, err := svc.ClassWiseSummary(context.Background())
	require.NoError(t, err)

	classes := make([]string, 0, len(summaries))
	for _, s := range summaries {
		classes = append(classes, s.Class)
	}
	assert.Equal(t, []string{"Nursery", "LKG", "1st", "10th"}, classes)
}

func TestClassWiseSummaryRateCappedAt100(t *testing.T) {
	reader := &fakeLedgerReader{rows: []models.StudentLedgerRow{
		{ID: "a", Class: "2nd", TotalFee: 1000, TotalPaid: 2500},
	}}
	svc := NewReportService(reader, nil)

	summaries, err := svc.ClassWiseSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 100, summaries[0].CollectionRate)
}

func TestPendingStudentsFiltersAndSorts(t *testing.T) {
	reader := &fakeLedgerReader{pending: []models.PendingStudent{
		{ID: "a", FullName: "Aarav", TotalFee: 1000, TotalPaid: 1000},
		{ID: "b", FullName: "Bina", TotalFee: 1000, TotalPaid: 100},
		{ID: "c", FullName: "Chitra", TotalFee: 1000, TotalPaid: 600},
		{ID: "d", FullName: "Dev", TotalFee: 500, TotalPaid: 900},
	}}
	svc := NewReportService(reader, nil)

	pending, err := svc.PendingStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "Bina", pending[0].FullName)
	assert.Equal(t, int64(900), pending[0].PendingAmount)
	assert.Equal(t, "Chitra", pending[1].FullName)
	assert.Equal(t, int64(400), pending[1].PendingAmount)
}
