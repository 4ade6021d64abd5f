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
	"github.com/noah-isme/school-fees-api/pkg/export"
)

type feeLedger interface {
	Create(ctx context.Context, payment *models.FeePayment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.FeePayment, error)
	SumByStudent(ctx context.Context, studentID string) (int64, error)
	List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePaymentDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.FeePaymentDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindDuesByID(ctx context.Context, id string) (*models.StudentDues, error)
}

type receiptCounter interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
	NextReceiptSeq(ctx context.Context) (prefix string, seq int64, err error)
}

type receiptRenderer interface {
	Render(receipt export.Receipt) ([]byte, error)
}

// RecordFeePaymentRequest describes a fee payment submission.
type RecordFeePaymentRequest struct {
	StudentID     string               `json:"student_id" validate:"required"`
	Amount        int64                `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate   *time.Time           `json:"payment_date,omitempty"`
	Remarks       string               `json:"remarks,omitempty"`
}

// FeeService records fee payments and answers ledger queries. Entries
// are append-only: a mistaken payment is corrected with a new entry and
// an administrative remark, never by editing the ledger.
type FeeService struct {
	ledger    feeLedger
	students  studentReader
	settings  receiptCounter
	receipts  receiptRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeeService constructs FeeService.
func NewFeeService(ledger feeLedger, students studentReader, settings receiptCounter, receipts receiptRenderer, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{ledger: ledger, students: students, settings: settings, receipts: receipts, validator: validate, logger: logger, now: time.Now}
}

// Record validates and appends a fee payment. The receipt number comes
// from the settings counter through a single atomic increment-and-return,
// so concurrent submissions never share a number.
func (s *FeeService) Record(ctx context.Context, req RecordFeePaymentRequest) (*models.FeePayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if req.Amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load school settings")
	}

	prefix, seq, err := s.settings.NextReceiptSeq(ctx)
	if err != nil {
		return nil, storeError(err, "failed to assign receipt number")
	}
	// seq is the already-advanced counter value; format it directly by
	// passing the previous value.
	receiptNumber := finance.ReceiptNumber(prefix, seq-1)

	paymentDate := s.now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}

	payment := &models.FeePayment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: req.PaymentMethod,
		ReceiptNumber: receiptNumber,
		AcademicYear:  settings.AcademicYear,
	}
	if req.Remarks != "" {
		payment.Remarks = &req.Remarks
	}

	if err := s.ledger.Create(ctx, payment); err != nil {
		return nil, storeError(err, "failed to record payment")
	}

	s.logger.Info("fee payment recorded",
		zap.String("student_id", req.StudentID),
		zap.String("receipt_number", receiptNumber),
		zap.Int64("amount", req.Amount),
	)
	return payment, nil
}

// History returns a student's payments, most recent first.
func (s *FeeService) History(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student")
	}
	payments, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to list payments")
	}
	return payments, nil
}

// Dues returns a student's record with ledger-derived paid, pending and
// status figures. Always recomputed, never persisted.
func (s *FeeService) Dues(ctx context.Context, studentID string) (*models.StudentDues, error) {
	dues, err := s.students.FindDuesByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student dues")
	}
	dues.PendingAmount = finance.PendingAmount(dues.TotalFee, dues.TotalPaid)
	dues.PaymentStatus = finance.PaymentStatusFor(dues.TotalFee, dues.TotalPaid)
	return dues, nil
}

// ListTransactions returns the fee ledger with roster context.
func (s *FeeService) ListTransactions(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePaymentDetail, *models.Pagination, error) {
	payments, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list fee transactions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return payments, pagination, nil
}

// Receipt renders a printable PDF for one ledger entry.
func (s *FeeService) Receipt(ctx context.Context, paymentID string) ([]byte, string, error) {
	detail, err := s.ledger.FindDetailByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, "", storeError(err, "failed to load payment")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, "", storeError(err, "failed to load school settings")
	}

	receipt := export.Receipt{
		SchoolName:    settings.SchoolName,
		ReceiptNumber: detail.ReceiptNumber,
		StudentName:   detail.StudentName,
		StudentCode:   detail.StudentCode,
		Class:         detail.StudentClass,
		Section:       detail.StudentSection,
		AcademicYear:  detail.AcademicYear,
		Amount:        detail.Amount,
		Method:        string(detail.PaymentMethod),
		PaymentDate:   detail.PaymentDate,
	}
	if settings.SchoolAddress != nil {
		receipt.SchoolAddress = *settings.SchoolAddress
	}
	if detail.Remarks != nil {
		receipt.Remarks = *detail.Remarks
	}

	data, err := s.receipts.Render(receipt)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, detail.ReceiptNumber + ".pdf", nil
}
