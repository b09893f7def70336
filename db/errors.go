package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("jobly/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations and on
	// duplicate pre-checks performed by repositories.
	ErrDuplicateKey = errors.New("jobly/db: duplicate key")

	// ErrInvalidRequest is returned for malformed input, such as an empty
	// partial update.
	ErrInvalidRequest = errors.New("jobly/db: invalid request")

	// ErrUnauthorized is returned when credentials do not match.
	ErrUnauthorized = errors.New("jobly/db: unauthorized")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("jobly/db: foreign key violation")

	// ErrDeadlock is returned when the database detects a deadlock.
	ErrDeadlock = errors.New("jobly/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline.
	ErrTimeout = errors.New("jobly/db: query timeout")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("jobly/db: check constraint violation")

	// ErrConnectionFailed is returned when the driver cannot reach the server.
	ErrConnectionFailed = errors.New("jobly/db: connection failed")
)

// ─────────────────────────────────────────────────────────────────────────────
// Error helpers: use errors.Is() for type-safe checks
// ─────────────────────────────────────────────────────────────────────────────

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsInvalidRequest(err error) bool      { return errors.Is(err, ErrInvalidRequest) }
func IsUnauthorized(err error) bool        { return errors.Is(err, ErrUnauthorized) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsConnectionFailed(err error) bool    { return errors.Is(err, ErrConnectionFailed) }

// NotFoundf returns an error matching ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &DBError{Sentinel: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Duplicatef returns an error matching ErrDuplicateKey with a formatted message.
func Duplicatef(format string, args ...any) error {
	return &DBError{Sentinel: ErrDuplicateKey, Message: fmt.Sprintf(format, args...)}
}

// Invalidf returns an error matching ErrInvalidRequest with a formatted message.
func Invalidf(format string, args ...any) error {
	return &DBError{Sentinel: ErrInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf returns an error matching ErrUnauthorized with a formatted message.
func Unauthorizedf(format string, args ...any) error {
	return &DBError{Sentinel: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// ─────────────────────────────────────────────────────────────────────────────
// DBError: rich error type preserving original driver error
// ─────────────────────────────────────────────────────────────────────────────

// DBError wraps a sentinel error with the original driver error so callers can
// either use errors.Is(err, ErrDuplicateKey) for simple checks or inspect the
// raw driver error for additional context.
type DBError struct {
	// Sentinel is one of the package-level Err* variables.
	Sentinel error
	// Cause is the original driver error; nil for errors raised by repositories.
	Cause error
	// Message is an optional human-readable hint, e.g. the violated constraint.
	Message string
}

func (e *DBError) Error() string {
	if e.Cause == nil {
		if e.Message == "" {
			return e.Sentinel.Error()
		}
		return fmt.Sprintf("%s: %s", e.Sentinel, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Sentinel, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper interface: pluggable per driver
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package's sentinel errors.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc is a convenience adapter from a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper returns a mapper that handles pgx, lib/pq and sqlite3.
func DefaultErrorMapper() ErrorMapper {
	return driverMapper(mapPGXError, mapPQError, mapSQLiteError)
}

// driverMapper handles the driver-independent cases and then tries each
// driver-specific mapping in order.
func driverMapper(specific ...func(error) error) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}

		if errors.Is(err, sql.ErrNoRows) {
			return &DBError{Sentinel: ErrNotFound, Cause: err}
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &DBError{Sentinel: ErrTimeout, Cause: err}
		}

		// Already mapped: do not double-wrap
		var dbe *DBError
		if errors.As(err, &dbe) {
			return err
		}

		for _, m := range specific {
			if mapped := m(err); mapped != nil {
				return mapped
			}
		}
		return err
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL mapping (pgx + lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

func mapPGXError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	return mapByPGCode(pgErr.Code, pgErr.ConstraintName, err)
}

func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	return mapByPGCode(string(pqErr.Code), pqErr.Constraint, err)
}

// PostgreSQL SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code, constraint string, cause error) error {
	switch code {
	case "23505": // unique_violation
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause, Message: constraint}
	case "23503": // foreign_key_violation
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause, Message: constraint}
	case "23514": // check_violation
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause, Message: constraint}
	case "40P01": // deadlock_detected
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case "57014": // query_canceled (statement_timeout)
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite mapping (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return nil
	}
	switch sqErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case sqlite3.ErrConstraintForeignKey:
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case sqlite3.ErrConstraintCheck:
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	}
	switch sqErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	case sqlite3.ErrCantOpen:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	return nil
}

// ChainMapper returns an ErrorMapper that tries each mapper in order,
// returning the first remapped error.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
