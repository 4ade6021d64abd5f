package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/finance"
	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type salaryLedger interface {
	Create(ctx context.Context, payment *models.SalaryPayment) error
	ListByStaff(ctx context.Context, staffID string) ([]models.SalaryPayment, error)
	SumByStaff(ctx context.Context, staffID string) (int64, error)
	List(ctx context.Context, month string) ([]models.SalaryPaymentDetail, error)
}

type staffReader interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type slipCounter interface {
	NextSlipSeq(ctx context.Context) (prefix string, seq int64, err error)
}

// RecordSalaryPaymentRequest describes a salary disbursement submission.
type RecordSalaryPaymentRequest struct {
	StaffID       string               `json:"staff_id" validate:"required"`
	Amount        int64                `json:"amount"`
	Month         string               `json:"month" validate:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate   *time.Time           `json:"payment_date,omitempty"`
	Remarks       string               `json:"remarks,omitempty"`
}

// SalaryService records salary disbursements and builds the salary report.
type SalaryService struct {
	ledger    salaryLedger
	staff     staffReader
	settings  slipCounter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSalaryService constructs SalaryService.
func NewSalaryService(ledger salaryLedger, staff staffReader, settings slipCounter, validate *validator.Validate, logger *zap.Logger) *SalaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalaryService{ledger: ledger, staff: staff, settings: settings, validator: validate, logger: logger, now: time.Now}
}

// Record validates and appends a salary payment. Slip numbers share the
// receipt counter mechanics: one atomic increment per disbursement.
func (s *SalaryService) Record(ctx context.Context, req RecordSalaryPaymentRequest) (*models.SalaryPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid salary payload")
	}
	if req.Amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}

	if _, err := s.staff.FindByID(ctx, req.StaffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, storeError(err, "failed to load staff member")
	}

	prefix, seq, err := s.settings.NextSlipSeq(ctx)
	if err != nil {
		return nil, storeError(err, "failed to assign slip number")
	}
	slipNumber := finance.ReceiptNumber(prefix, seq-1)

	paymentDate := s.now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}

	payment := &models.SalaryPayment{
		StaffID:       req.StaffID,
		Amount:        req.Amount,
		Month:         req.Month,
		PaymentDate:   paymentDate,
		PaymentMethod: req.PaymentMethod,
		SlipNumber:    slipNumber,
	}
	if req.Remarks != "" {
		payment.Remarks = &req.Remarks
	}

	if err := s.ledger.Create(ctx, payment); err != nil {
		return nil, storeError(err, "failed to record salary payment")
	}

	s.logger.Info("salary payment recorded",
		zap.String("staff_id", req.StaffID),
		zap.String("slip_number", slipNumber),
		zap.String("month", req.Month),
		zap.Int64("amount", req.Amount),
	)
	return payment, nil
}

// History returns a staff member's salary payments, most recent first.
func (s *SalaryService) History(ctx context.Context, staffID string) ([]models.SalaryPayment, error) {
	if _, err := s.staff.FindByID(ctx, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, storeError(err, "failed to load staff member")
	}
	payments, err := s.ledger.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, storeError(err, "failed to list salary payments")
	}
	return payments, nil
}

// PaidTotal re-derives the paid total for one staff member.
func (s *SalaryService) PaidTotal(ctx context.Context, staffID string) (int64, error) {
	total, err := s.ledger.SumByStaff(ctx, staffID)
	if err != nil {
		return 0, storeError(err, "failed to sum salary payments")
	}
	return total, nil
}

// Report returns salary ledger entries with staff context, optionally
// filtered to a single month label, with the grand total of the listed
// entries.
func (s *SalaryService) Report(ctx context.Context, month string) (*models.SalaryReport, error) {
	payments, err := s.ledger.List(ctx, month)
	if err != nil {
		return nil, storeError(err, "failed to build salary report")
	}
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	return &models.SalaryReport{Month: month, Payments: payments, Total: total}, nil
}
