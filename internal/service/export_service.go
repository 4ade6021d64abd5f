package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/export"
	"github.com/noah-isme/school-fees-api/pkg/jobs"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

type urlSigner interface {
	Sign(jobID, relPath string) (string, time.Time, error)
	Verify(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

type jobEnqueuer interface {
	Enqueue(task jobs.Task) error
}

type exportStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type exportStaffLister interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
}

type exportFeeLister interface {
	List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePaymentDetail, int, error)
}

type classSummarizer interface {
	ClassWiseSummary(ctx context.Context) ([]models.ClassSummary, error)
}

// ExportService builds CSV and PDF files in the background. A request
// creates a QUEUED job row and enqueues work; the handler renders the
// dataset, stores the file and publishes a signed download URL.
type ExportService struct {
	exportJobs exportJobStore
	students   exportStudentLister
	staff      exportStaffLister
	fees       exportFeeLister
	reports    classSummarizer
	storage    exportStorage
	signer     urlSigner
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	queue      jobEnqueuer
	logger     *zap.Logger
}

// NewExportService constructs ExportService. The queue is attached
// afterwards through SetQueue, since the queue handler needs the
// service.
func NewExportService(exportJobs exportJobStore, students exportStudentLister, staff exportStaffLister, fees exportFeeLister, reports classSummarizer, storage exportStorage, signer urlSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		exportJobs: exportJobs,
		students:   students,
		staff:      staff,
		fees:       fees,
		reports:    reports,
		storage:    storage,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// SetQueue attaches the worker queue used for asynchronous processing.
func (s *ExportService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

func validExportType(t models.ExportType) bool {
	switch t {
	case models.ExportTypeStudents, models.ExportTypeStaff, models.ExportTypeFeeLedger, models.ExportTypeClassSummary:
		return true
	}
	return false
}

// Request creates a job and enqueues it.
func (s *ExportService) Request(ctx context.Context, exportType models.ExportType, params models.ExportJobParams, createdBy string) (*models.ExportJob, error) {
	if !validExportType(exportType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export type")
	}
	if params.Format != models.ExportFormatCSV && params.Format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue not running")
	}

	job := &models.ExportJob{
		Type:      exportType,
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: createdBy,
	}
	if err := s.exportJobs.Create(ctx, job); err != nil {
		return nil, storeError(err, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Task{ID: job.ID, Kind: string(exportType)}); err != nil {
		msg := err.Error()
		failed := models.ExportStatusFailed
		_ = s.exportJobs.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &failed, ErrorMessage: &msg})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return job, nil
}

// Status fetches job metadata.
func (s *ExportService) Status(ctx context.Context, jobID string) (*models.ExportJob, error) {
	job, err := s.exportJobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, storeError(err, "failed to load export job")
	}
	return job, nil
}

// Process is the queue handler: it renders and stores one export.
func (s *ExportService) Process(ctx context.Context, task jobs.Task) error {
	jobID := task.ID

	record, err := s.exportJobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}

	processing := models.ExportStatusProcessing
	if err := s.exportJobs.Update(ctx, jobID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}

	data, filename, err := s.render(ctx, record)
	if err != nil {
		s.fail(ctx, jobID, err)
		return err
	}

	relPath, err := s.storage.Save(filename, data)
	if err != nil {
		s.fail(ctx, jobID, err)
		return err
	}

	token, _, err := s.signer.Sign(jobID, relPath)
	if err != nil {
		s.fail(ctx, jobID, err)
		return err
	}

	finished := models.ExportStatusFinished
	resultURL := "/api/v1/exports/download?token=" + token
	now := time.Now().UTC()
	if err := s.exportJobs.Update(ctx, jobID, repository.UpdateExportJobParams{Status: &finished, ResultURL: &resultURL, FinishedAt: &now}); err != nil {
		return fmt.Errorf("mark export finished: %w", err)
	}
	s.logger.Info("export finished", zap.String("job_id", jobID), zap.String("type", string(record.Type)), zap.String("file", relPath))
	return nil
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) {
	failed := models.ExportStatusFailed
	msg := cause.Error()
	now := time.Now().UTC()
	if err := s.exportJobs.Update(ctx, jobID, repository.UpdateExportJobParams{Status: &failed, ErrorMessage: &msg, FinishedAt: &now}); err != nil {
		s.logger.Error("failed to mark export failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) ([]byte, string, error) {
	dataset, err := s.dataset(ctx, job)
	if err != nil {
		return nil, "", err
	}

	ext := string(job.Params.Format)
	filename := fmt.Sprintf("%s/%s-%s.%s", job.ID, job.Type, time.Now().UTC().Format("20060102150405"), ext)

	switch job.Params.Format {
	case models.ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		return data, filename, err
	case models.ExportFormatPDF:
		data, err := s.pdf.Render(dataset)
		return data, filename, err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", job.Params.Format)
	}
}

// exportPageSize bounds one repository fetch; exports page until the
// source is exhausted so large rosters are never cut off.
const exportPageSize = 100

func (s *ExportService) dataset(ctx context.Context, job *models.ExportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ExportTypeStudents:
		var students []models.Student
		for page := 1; ; page++ {
			batch, total, err := s.students.List(ctx, models.StudentFilter{
				Class:        job.Params.Class,
				AcademicYear: job.Params.AcademicYear,
				Page:         page,
				PageSize:     exportPageSize,
			})
			if err != nil {
				return export.Dataset{}, fmt.Errorf("list students for export: %w", err)
			}
			students = append(students, batch...)
			if len(batch) == 0 || len(students) >= total {
				break
			}
		}
		headers := []string{"Student ID", "Name", "Class", "Section", "Roll No", "Parent", "Phone", "Total Fee", "Status"}
		rows := make([]map[string]string, 0, len(students))
		for _, st := range students {
			rows = append(rows, map[string]string{
				"Student ID": st.StudentID,
				"Name":       st.FullName,
				"Class":      st.Class,
				"Section":    st.Section,
				"Roll No":    strconv.Itoa(st.RollNo),
				"Parent":     st.ParentName,
				"Phone":      st.ParentPhone,
				"Total Fee":  strconv.FormatInt(st.TotalFee, 10),
				"Status":     string(st.Status),
			})
		}
		return export.Dataset{Title: "Student Roster", Headers: headers, Rows: rows}, nil

	case models.ExportTypeStaff:
		var staff []models.Staff
		for page := 1; ; page++ {
			batch, total, err := s.staff.List(ctx, models.StaffFilter{Page: page, PageSize: exportPageSize})
			if err != nil {
				return export.Dataset{}, fmt.Errorf("list staff for export: %w", err)
			}
			staff = append(staff, batch...)
			if len(batch) == 0 || len(staff) >= total {
				break
			}
		}
		headers := []string{"Staff ID", "Name", "Role", "Monthly Salary"}
		rows := make([]map[string]string, 0, len(staff))
		for _, st := range staff {
			rows = append(rows, map[string]string{
				"Staff ID":       st.StaffID,
				"Name":           st.FullName,
				"Role":           st.Role,
				"Monthly Salary": strconv.FormatInt(st.MonthlySalary, 10),
			})
		}
		return export.Dataset{Title: "Staff Directory", Headers: headers, Rows: rows}, nil

	case models.ExportTypeFeeLedger:
		var payments []models.FeePaymentDetail
		for page := 1; ; page++ {
			batch, total, err := s.fees.List(ctx, models.FeePaymentFilter{
				Class:        job.Params.Class,
				AcademicYear: job.Params.AcademicYear,
				Page:         page,
				PageSize:     exportPageSize,
			})
			if err != nil {
				return export.Dataset{}, fmt.Errorf("list fee ledger for export: %w", err)
			}
			payments = append(payments, batch...)
			if len(batch) == 0 || len(payments) >= total {
				break
			}
		}
		headers := []string{"Receipt No", "Student", "Class", "Amount", "Method", "Date"}
		rows := make([]map[string]string, 0, len(payments))
		for _, p := range payments {
			rows = append(rows, map[string]string{
				"Receipt No": p.ReceiptNumber,
				"Student":    p.StudentName,
				"Class":      p.StudentClass,
				"Amount":     strconv.FormatInt(p.Amount, 10),
				"Method":     string(p.PaymentMethod),
				"Date":       p.PaymentDate.Format("2006-01-02"),
			})
		}
		return export.Dataset{Title: "Fee Ledger", Headers: headers, Rows: rows}, nil

	case models.ExportTypeClassSummary:
		summaries, err := s.reports.ClassWiseSummary(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("class summary for export: %w", err)
		}
		headers := []string{"Class", "Total Due", "Collected", "Pending", "Collection Rate"}
		rows := make([]map[string]string, 0, len(summaries))
		for _, c := range summaries {
			rows = append(rows, map[string]string{
				"Class":           c.Class,
				"Total Due":       strconv.FormatInt(c.TotalDue, 10),
				"Collected":       strconv.FormatInt(c.Collected, 10),
				"Pending":         strconv.FormatInt(c.Pending, 10),
				"Collection Rate": strconv.Itoa(c.CollectionRate) + "%",
			})
		}
		return export.Dataset{Title: "Class Wise Summary", Headers: headers, Rows: rows}, nil

	default:
		return export.Dataset{}, fmt.Errorf("unsupported export type %q", job.Type)
	}
}

// ResolveDownload validates a signed token and returns the stored file
// path for streaming.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (string, error) {
	jobID, relPath, _, err := s.signer.Verify(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	job, err := s.exportJobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return "", storeError(err, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export not finished")
	}
	return relPath, nil
}

// Cleanup deletes finished jobs and their files past the retention
// cutoff.
func (s *ExportService) Cleanup(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention)
	old, err := s.exportJobs.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		return storeError(err, "failed to list stale exports")
	}
	for _, job := range old {
		if job.ResultURL != nil {
			if _, relPath, _, err := s.signer.Verify(tokenFromURL(*job.ResultURL), true); err == nil {
				if err := s.storage.Delete(relPath); err != nil {
					s.logger.Warn("stale export file delete failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
		}
		cleared := ""
		if err := s.exportJobs.Update(ctx, job.ID, repository.UpdateExportJobParams{ResultURL: &cleared}); err != nil {
			s.logger.Warn("stale export row update failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return nil
}

func tokenFromURL(url string) string {
	const marker = "token="
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}
