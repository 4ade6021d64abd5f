package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/finance"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type fakePromoter struct {
	fromYear string
	toYear   string
	order    []string
	promoted int64
	err      error
}

func (f *fakePromoter) PromoteAll(_ context.Context, fromYear, toYear string, classOrder []string) (int64, error) {
	f.fromYear = fromYear
	f.toYear = toYear
	f.order = classOrder
	return f.promoted, f.err
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) InvalidateSummaries(context.Context) error {
	f.calls++
	return nil
}

func TestPromoteAllRejectsSameYear(t *testing.T) {
	svc := NewPromotionService(&fakePromoter{}, nil, nil)

	_, err := svc.PromoteAll(context.Background(), "2025-26", "2025-26")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPromoteAllRejectsEmptyYears(t *testing.T) {
	svc := NewPromotionService(&fakePromoter{}, nil, nil)

	_, err := svc.PromoteAll(context.Background(), "", "2026-27")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPromoteAllPassesClassProgression(t *testing.T) {
	promoter := &fakePromoter{promoted: 245}
	cache := &fakeInvalidator{}
	svc := NewPromotionService(promoter, cache, nil)

	result, err := svc.PromoteAll(context.Background(), "2025-26", "2026-27")
	require.NoError(t, err)

	assert.Equal(t, int64(245), result.Promoted)
	assert.Equal(t, "2025-26", promoter.fromYear)
	assert.Equal(t, "2026-27", promoter.toYear)
	assert.Equal(t, finance.ClassOrder, promoter.order)
	assert.Equal(t, 1, cache.calls)
}

func TestPromoteAllStoreFailureIsBulkFailure(t *testing.T) {
	promoter := &fakePromoter{err: assert.AnError}
	svc := NewPromotionService(promoter, nil, nil)

	_, err := svc.PromoteAll(context.Background(), "2025-26", "2026-27")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPartialBulk.Code, appErrors.FromError(err).Code)
}
