package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type fakeRosterCounter struct{ total, active int }

func (f *fakeRosterCounter) Counts(context.Context) (int, int, error) { return f.total, f.active, nil }

type fakeStaffCounter struct{ count int }

func (f *fakeStaffCounter) Count(context.Context) (int, error) { return f.count, nil }

type fakeFeeTotaller struct{ total int64 }

func (f *fakeFeeTotaller) TotalCollected(context.Context) (int64, error) { return f.total, nil }

type fakeSalaryTotaller struct{ total int64 }

func (f *fakeSalaryTotaller) TotalPaid(context.Context) (int64, error) { return f.total, nil }

type memoryCache struct {
	values map[string][]byte
	sets   int
	gets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(context.Context, string) error {
	c.values = map[string][]byte{}
	return nil
}

func newTestDashboardService(cache dashboardCache) *DashboardService {
	reader := &fakeLedgerReader{rows: []models.StudentLedgerRow{
		{ID: "a", Class: "5th", TotalFee: 1000, TotalPaid: 1200},
		{ID: "b", Class: "5th", TotalFee: 1000, TotalPaid: 300},
	}}
	return NewDashboardService(
		&fakeRosterCounter{total: 250, active: 240},
		&fakeStaffCounter{count: 18},
		&fakeFeeTotaller{total: 1500},
		&fakeSalaryTotaller{total: 400000},
		reader,
		cache,
		time.Minute,
		nil,
	)
}

func TestDashboardSummaryAggregates(t *testing.T) {
	svc := newTestDashboardService(nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, summary.TotalStudents)
	assert.Equal(t, 240, summary.ActiveStudents)
	assert.Equal(t, 18, summary.TotalStaff)
	assert.Equal(t, int64(2000), summary.TotalDue)
	assert.Equal(t, int64(1500), summary.TotalCollected)
	// Pending folds per student: the overpaid student contributes zero.
	assert.Equal(t, int64(700), summary.TotalPending)
	assert.Equal(t, 75, summary.CollectionRate)
	assert.Equal(t, int64(400000), summary.TotalSalaryPaid)
}

func TestDashboardSummaryUsesCache(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestDashboardService(cache)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	second, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestInvalidateSummariesClearsCache(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestDashboardService(cache)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateSummaries(context.Background()))

	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}
