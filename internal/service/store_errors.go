package service

import (
	"github.com/noah-isme/school-fees-api/internal/repository"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

// storeError maps low-level store failures onto the domain taxonomy.
// Outages surface as StoreUnavailable (the caller owns retry policy;
// financial writes are never retried here), uniqueness violations as
// DuplicateKey, everything else as Internal.
func storeError(err error, message string) error {
	switch {
	case repository.IsUnavailable(err):
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
	case repository.IsDuplicate(err):
		return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, message)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

// bulkError is storeError for set-based operations: a failed cascade or
// promotion is reported as a failure of the whole unit, never as a
// partially-applied success.
func bulkError(err error, message string) error {
	if repository.IsUnavailable(err) {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrPartialBulk.Code, appErrors.ErrPartialBulk.Status, message)
}
