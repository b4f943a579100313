package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicate is a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrNoRows is returned when a single-row query matched nothing.
	ErrNoRows = errors.New("no rows")
)

// DriverError keeps the original driver error while matching one of the
// sentinels above.
type DriverError struct {
	Kind error
	Err  error
}

func (e *DriverError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *DriverError) Is(target error) bool {
	return target == e.Kind
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

const pqUniqueViolation = "23505"

func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DriverError{Kind: ErrNoRows, Err: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return &DriverError{Kind: ErrDuplicate, Err: err}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &DriverError{Kind: ErrDuplicate, Err: err}
		}
	}

	return err
}
