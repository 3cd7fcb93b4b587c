package errors

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-dbw"
)

// storageErrorCodes maps the sentinel errors raised by the storage layer to
// domain error Codes.  See Convert.
var storageErrorCodes = map[error]Code{
	dbw.ErrRecordNotFound:   RecordNotFound,
	dbw.ErrInvalidParameter: InvalidParameter,
	dbw.ErrMaxRetries:       MaxRetries,
	dbw.ErrInvalidFieldMask: InvalidFieldMask,
}

// IsUniqueError returns a boolean indicating whether the error is known to
// report a unique constraint violation.
func IsUniqueError(err error) bool {
	if err == nil {
		return false
	}
	if hasCode(err, NotUnique) {
		return true
	}
	// the sqlite driver doesn't export a sentinel for unique violations, so we
	// have to match on the constraint text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFoundError returns a boolean indicating whether the error is known to
// report a "record not found" condition.  It also matches the storage layer's
// not found sentinel, so callers don't need to know whether a repository has
// already converted the error.
func IsNotFoundError(err error) bool {
	if errors.Is(err, dbw.ErrRecordNotFound) {
		return true
	}
	return hasCode(err, RecordNotFound)
}

// IsVersionMismatchError returns a boolean indicating whether the error is
// known to report an optimistic-concurrency conflict.
func IsVersionMismatchError(err error) bool {
	return hasCode(err, VersionMismatch)
}

// IsIntegrityError returns a boolean indicating whether the error is known to
// report a cryptographic integrity (authentication) failure.
func IsIntegrityError(err error) bool {
	return hasCode(err, IntegrityCheck)
}

// IsForbiddenError returns a boolean indicating whether the error is known to
// report an authorization denial.
func IsForbiddenError(err error) bool {
	return hasCode(err, Forbidden)
}

func hasCode(err error, c Code) bool {
	if err == nil {
		return false
	}
	var domainErr *Err
	if errors.As(err, &domainErr) {
		if domainErr.Code == c {
			return true
		}
	}
	return false
}

// As is the equivalent of the std errors.As, and allows devs to only import
// this package for the capability.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is the equivalent of the std errors.Is, and allows devs to only import
// this package for the capability.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
