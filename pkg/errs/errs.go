package errs

import (
	cr "github.com/cockroachdb/errors"
)

// Sentinel errors shared by the store, usecase and adaptor layers.
var (
	// ErrStorage marks infrastructure failures (database or broker unreachable).
	// Callers may retry the whole operation.
	ErrStorage = cr.New("storage unavailable")

	ErrScreeningNotFound = cr.New("screening not found")
	ErrInvalidRequest    = cr.New("invalid request")

	// ErrConflict is returned by a commit when the seat is no longer validly
	// held by the caller: expired, already booked or held by someone else.
	ErrConflict = cr.New("seat not held by caller")

	ErrForbidden = cr.New("forbidden")
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

// Mark attaches markErr to err so errors.Is(err, markErr) holds while the
// original message and stack are preserved.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// Storage wraps err with msg and marks it as an infrastructure failure.
func Storage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Mark(cr.Wrap(err, msg), ErrStorage)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}
