package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if IsUniqueViolation(err) {
		return duplicateErr
	}

	return err
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

// IsTransient reports whether err aborted a transaction that can succeed when
// run again: a serialization failure or a detected deadlock.
func IsTransient(err error) bool {
	return hasCode(err, pgSerializationFailure) || hasCode(err, pgDeadlockDetected)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
