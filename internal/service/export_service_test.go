package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
	"github.com/noah-isme/school-fees-api/pkg/jobs"
)

type fakeExportJobStore struct {
	jobs map[string]*models.ExportJob
	seq  int
}

func newFakeExportJobStore() *fakeExportJobStore {
	return &fakeExportJobStore{jobs: map[string]*models.ExportJob{}}
}

func (f *fakeExportJobStore) Create(_ context.Context, job *models.ExportJob) error {
	f.seq++
	job.ID = fmt.Sprintf("exp-%d", f.seq)
	job.CreatedAt = time.Now().UTC()
	stored := *job
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeExportJobStore) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("export job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

func (f *fakeExportJobStore) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := f.jobs[id]
	if !ok {
		return fmt.Errorf("export job %s not found", id)
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (f *fakeExportJobStore) ListFinishedBefore(context.Context, time.Time, int) ([]models.ExportJob, error) {
	return nil, nil
}

type fakeExportStorage struct {
	files map[string][]byte
}

func (f *fakeExportStorage) Save(filename string, data []byte) (string, error) {
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[filename] = data
	return filename, nil
}

func (f *fakeExportStorage) Delete(filename string) error {
	delete(f.files, filename)
	return nil
}

type fakeExportSigner struct{}

func (fakeExportSigner) Sign(jobID, relPath string) (string, time.Time, error) {
	return jobID + "~" + relPath, time.Now().Add(time.Hour), nil
}

func (fakeExportSigner) Verify(token string, _ bool) (string, string, time.Time, error) {
	parts := strings.SplitN(token, "~", 2)
	if len(parts) != 2 {
		return "", "", time.Time{}, fmt.Errorf("bad token")
	}
	return parts[0], parts[1], time.Now().Add(time.Hour), nil
}

type fakeTaskQueue struct {
	tasks []jobs.Task
}

func (f *fakeTaskQueue) Enqueue(task jobs.Task) error {
	f.tasks = append(f.tasks, task)
	return nil
}

// fakeStudentPager serves a roster in pages the way the repository does.
type fakeStudentPager struct {
	students []models.Student
	calls    int
}

func (f *fakeStudentPager) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	f.calls++
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	start := (page - 1) * size
	if start >= len(f.students) {
		return nil, len(f.students), nil
	}
	end := start + size
	if end > len(f.students) {
		end = len(f.students)
	}
	return f.students[start:end], len(f.students), nil
}

type fakeStaffPager struct{}

func (fakeStaffPager) List(context.Context, models.StaffFilter) ([]models.Staff, int, error) {
	return nil, 0, nil
}

type fakeFeePager struct{}

func (fakeFeePager) List(context.Context, models.FeePaymentFilter) ([]models.FeePaymentDetail, int, error) {
	return nil, 0, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) ClassWiseSummary(context.Context) ([]models.ClassSummary, error) {
	return nil, nil
}

func rosterOf(n int) []models.Student {
	students := make([]models.Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, models.Student{
			StudentID: fmt.Sprintf("STU%03d", i),
			FullName:  fmt.Sprintf("Student %d", i),
			Class:     "5th",
			TotalFee:  12000,
			Status:    models.StudentStatusActive,
		})
	}
	return students
}

func newTestExportService(store *fakeExportJobStore, students *fakeStudentPager, storage *fakeExportStorage) *ExportService {
	return NewExportService(store, students, fakeStaffPager{}, fakeFeePager{}, fakeSummarizer{}, storage, fakeExportSigner{}, nil)
}

func TestExportDatasetPagesThroughFullRoster(t *testing.T) {
	students := &fakeStudentPager{students: rosterOf(150)}
	svc := newTestExportService(newFakeExportJobStore(), students, &fakeExportStorage{})

	dataset, err := svc.dataset(context.Background(), &models.ExportJob{
		Type:   models.ExportTypeStudents,
		Params: models.ExportJobParams{Format: models.ExportFormatCSV},
	})
	require.NoError(t, err)

	assert.Len(t, dataset.Rows, 150)
	assert.Equal(t, "STU001", dataset.Rows[0]["Student ID"])
	assert.Equal(t, "STU150", dataset.Rows[149]["Student ID"])
	assert.GreaterOrEqual(t, students.calls, 2)
}

func TestExportProcessPublishesSignedDownload(t *testing.T) {
	store := newFakeExportJobStore()
	storage := &fakeExportStorage{}
	svc := newTestExportService(store, &fakeStudentPager{students: rosterOf(3)}, storage)
	queue := &fakeTaskQueue{}
	svc.SetQueue(queue)

	job, err := svc.Request(context.Background(), models.ExportTypeStudents, models.ExportJobParams{
		Format: models.ExportFormatCSV,
	}, "user-1")
	require.NoError(t, err)
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, job.ID, queue.tasks[0].ID)

	require.NoError(t, svc.Process(context.Background(), queue.tasks[0]))

	finished, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, finished.Status)
	require.NotNil(t, finished.ResultURL)
	assert.Contains(t, *finished.ResultURL, "token=")

	require.Len(t, storage.files, 1)
	for _, data := range storage.files {
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 4) // header + 3 students
		assert.True(t, strings.HasPrefix(lines[0], "Student ID,"))
	}
}

func TestExportRequestRejectsUnknownType(t *testing.T) {
	svc := newTestExportService(newFakeExportJobStore(), &fakeStudentPager{}, &fakeExportStorage{})
	svc.SetQueue(&fakeTaskQueue{})

	_, err := svc.Request(context.Background(), models.ExportType("grades"), models.ExportJobParams{
		Format: models.ExportFormatCSV,
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
