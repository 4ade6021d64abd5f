package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type fakeSalaryLedger struct {
	created []models.SalaryPayment
	details []models.SalaryPaymentDetail
}

func (f *fakeSalaryLedger) Create(_ context.Context, payment *models.SalaryPayment) error {
	f.created = append(f.created, *payment)
	return nil
}

func (f *fakeSalaryLedger) ListByStaff(context.Context, string) ([]models.SalaryPayment, error) {
	return f.created, nil
}

func (f *fakeSalaryLedger) SumByStaff(context.Context, string) (int64, error) {
	var total int64
	for _, p := range f.created {
		total += p.Amount
	}
	return total, nil
}

func (f *fakeSalaryLedger) List(_ context.Context, month string) ([]models.SalaryPaymentDetail, error) {
	if month == "" {
		return f.details, nil
	}
	var out []models.SalaryPaymentDetail
	for _, d := range f.details {
		if d.Month == month {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeStaffReader struct {
	staff *models.Staff
}

func (f *fakeStaffReader) FindByID(context.Context, string) (*models.Staff, error) {
	if f.staff == nil {
		return nil, sql.ErrNoRows
	}
	return f.staff, nil
}

type fakeSlipCounter struct {
	seq int64
}

func (f *fakeSlipCounter) NextSlipSeq(context.Context) (string, int64, error) {
	f.seq++
	return "SLP", f.seq, nil
}

func TestSalaryServiceRecordAssignsSlipNumber(t *testing.T) {
	ledger := &fakeSalaryLedger{}
	svc := NewSalaryService(ledger, &fakeStaffReader{staff: &models.Staff{ID: "t1"}}, &fakeSlipCounter{}, nil, nil)

	payment, err := svc.Record(context.Background(), RecordSalaryPaymentRequest{
		StaffID:       "t1",
		Amount:        25000,
		Month:         "January 2026",
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "SLP000001", payment.SlipNumber)
	require.Len(t, ledger.created, 1)
}

func TestSalaryServiceRecordRejectsNonPositiveAmount(t *testing.T) {
	svc := NewSalaryService(&fakeSalaryLedger{}, &fakeStaffReader{staff: &models.Staff{ID: "t1"}}, &fakeSlipCounter{}, nil, nil)

	_, err := svc.Record(context.Background(), RecordSalaryPaymentRequest{
		StaffID:       "t1",
		Amount:        0,
		Month:         "January 2026",
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErrors.FromError(err).Code)
}

func TestSalaryServiceRecordUnknownStaff(t *testing.T) {
	svc := NewSalaryService(&fakeSalaryLedger{}, &fakeStaffReader{}, &fakeSlipCounter{}, nil, nil)

	_, err := svc.Record(context.Background(), RecordSalaryPaymentRequest{
		StaffID:       "missing",
		Amount:        100,
		Month:         "January 2026",
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSalaryReportFiltersByMonth(t *testing.T) {
	ledger := &fakeSalaryLedger{details: []models.SalaryPaymentDetail{
		{SalaryPayment: models.SalaryPayment{Amount: 20000, Month: "January 2026"}},
		{SalaryPayment: models.SalaryPayment{Amount: 22000, Month: "January 2026"}},
		{SalaryPayment: models.SalaryPayment{Amount: 21000, Month: "February 2026"}},
	}}
	svc := NewSalaryService(ledger, &fakeStaffReader{staff: &models.Staff{ID: "t1"}}, &fakeSlipCounter{}, nil, nil)

	report, err := svc.Report(context.Background(), "January 2026")
	require.NoError(t, err)
	assert.Len(t, report.Payments, 2)
	assert.Equal(t, int64(42000), report.Total)

	all, err := svc.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all.Payments, 3)
	assert.Equal(t, int64(63000), all.Total)
}
