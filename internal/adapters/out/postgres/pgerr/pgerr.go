// Package pgerr maps PostgreSQL failures onto the domain error taxonomy.
package pgerr

import (
	"errors"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes that callers can resolve by retrying the whole transaction.
const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
	UniqueViolation      = "23505"
)

// IsConflict reports whether err is a lock, serialization or uniqueness conflict.
func IsConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case SerializationFailure, DeadlockDetected, LockNotAvailable, UniqueViolation:
		return true
	default:
		return false
	}
}

// Translate wraps conflicts as errs.ConcurrentModificationError and returns
// every other error unchanged.
func Translate(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if IsConflict(err) {
		return errs.NewConcurrentModificationErrorWithCause(entity, id, err)
	}
	return err
}
