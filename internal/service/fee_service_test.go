package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/export"
)

type fakeFeeLedger struct {
	created   []models.FeePayment
	createErr error
	payments  []models.FeePayment
	detail    *models.FeePaymentDetail
}

func (f *fakeFeeLedger) Create(_ context.Context, payment *models.FeePayment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *payment)
	return nil
}

func (f *fakeFeeLedger) ListByStudent(context.Context, string) ([]models.FeePayment, error) {
	return f.payments, nil
}

func (f *fakeFeeLedger) SumByStudent(context.Context, string) (int64, error) {
	var total int64
	for _, p := range f.payments {
		total += p.Amount
	}
	return total, nil
}

func (f *fakeFeeLedger) List(context.Context, models.FeePaymentFilter) ([]models.FeePaymentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeFeeLedger) FindDetailByID(context.Context, string) (*models.FeePaymentDetail, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return f.detail, nil
}

type fakeStudentReader struct {
	student *models.Student
	dues    *models.StudentDues
}

func (f *fakeStudentReader) FindByID(context.Context, string) (*models.Student, error) {
	if f.student == nil {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

func (f *fakeStudentReader) FindDuesByID(context.Context, string) (*models.StudentDues, error) {
	if f.dues == nil {
		return nil, sql.ErrNoRows
	}
	return f.dues, nil
}

type fakeReceiptCounter struct {
	settings *models.SchoolSettings
	seq      int64
}

func (f *fakeReceiptCounter) Get(context.Context) (*models.SchoolSettings, error) {
	return f.settings, nil
}

func (f *fakeReceiptCounter) NextReceiptSeq(context.Context) (string, int64, error) {
	f.seq++
	return f.settings.ReceiptPrefix, f.seq, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(export.Receipt) ([]byte, error) { return []byte("%PDF"), nil }

func newTestFeeService(ledger *fakeFeeLedger, students *fakeStudentReader, counter *fakeReceiptCounter) *FeeService {
	return NewFeeService(ledger, students, counter, fakeRenderer{}, nil, nil)
}

func TestFeeServiceRecordRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestFeeService(&fakeFeeLedger{}, &fakeStudentReader{student: &models.Student{ID: "s1"}}, &fakeReceiptCounter{settings: &models.SchoolSettings{ReceiptPrefix: "REC"}})

	for _, amount := range []int64{0, -500} {
		_, err := svc.Record(context.Background(), RecordFeePaymentRequest{
			StudentID:     "s1",
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErrors.FromError(err).Code)
	}
}

func TestFeeServiceRecordAssignsSequentialReceipts(t *testing.T) {
	ledger := &fakeFeeLedger{}
	counter := &fakeReceiptCounter{settings: &models.SchoolSettings{ReceiptPrefix: "REC", AcademicYear: "2025-26"}}
	svc := newTestFeeService(ledger, &fakeStudentReader{student: &models.Student{ID: "s1"}}, counter)

	first, err := svc.Record(context.Background(), RecordFeePaymentRequest{
		StudentID:     "s1",
		Amount:        1500,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "REC000001", first.ReceiptNumber)
	assert.Equal(t, "2025-26", first.AcademicYear)

	second, err := svc.Record(context.Background(), RecordFeePaymentRequest{
		StudentID:     "s1",
		Amount:        2000,
		PaymentMethod: models.PaymentMethodOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, "REC000002", second.ReceiptNumber)
	require.Len(t, ledger.created, 2)
}

func TestFeeServiceRecordUnknownStudent(t *testing.T) {
	svc := newTestFeeService(&fakeFeeLedger{}, &fakeStudentReader{}, &fakeReceiptCounter{settings: &models.SchoolSettings{ReceiptPrefix: "REC"}})

	_, err := svc.Record(context.Background(), RecordFeePaymentRequest{
		StudentID:     "missing",
		Amount:        100,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceRecordRejectsUnknownMethod(t *testing.T) {
	svc := newTestFeeService(&fakeFeeLedger{}, &fakeStudentReader{student: &models.Student{ID: "s1"}}, &fakeReceiptCounter{settings: &models.SchoolSettings{ReceiptPrefix: "REC"}})

	_, err := svc.Record(context.Background(), RecordFeePaymentRequest{
		StudentID:     "s1",
		Amount:        100,
		PaymentMethod: "crypto",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceDuesDerivesStatus(t *testing.T) {
	students := &fakeStudentReader{dues: &models.StudentDues{
		Student:   models.Student{ID: "s1", TotalFee: 10000},
		TotalPaid: 4000,
	}}
	svc := newTestFeeService(&fakeFeeLedger{}, students, &fakeReceiptCounter{settings: &models.SchoolSettings{}})

	dues, err := svc.Dues(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), dues.PendingAmount)
	assert.Equal(t, models.PaymentStatusPartial, dues.PaymentStatus)
}

func TestFeeServiceDuesZeroFeeIsUnpaid(t *testing.T) {
	students := &fakeStudentReader{dues: &models.StudentDues{
		Student:   models.Student{ID: "s1", TotalFee: 0},
		TotalPaid: 500,
	}}
	svc := newTestFeeService(&fakeFeeLedger{}, students, &fakeReceiptCounter{settings: &models.SchoolSettings{}})

	dues, err := svc.Dues(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, dues.PaymentStatus)
	assert.Equal(t, int64(0), dues.PendingAmount)
}

func TestFeeServiceReceiptRendersPDF(t *testing.T) {
	paid := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	ledger := &fakeFeeLedger{detail: &models.FeePaymentDetail{
		FeePayment: models.FeePayment{ID: "p1", ReceiptNumber: "REC000042", Amount: 2500, PaymentDate: paid, PaymentMethod: models.PaymentMethodCash},
		StudentName: "Asha Verma", StudentCode: "STU001", StudentClass: "5th", StudentSection: "A",
	}}
	counter := &fakeReceiptCounter{settings: &models.SchoolSettings{SchoolName: "Sunrise Public School"}}
	svc := newTestFeeService(ledger, &fakeStudentReader{student: &models.Student{ID: "s1"}}, counter)

	data, filename, err := svc.Receipt(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "REC000042.pdf", filename)
}
