// Package apperr separates the two error kinds the services raise:
// invalid input (rejected before any storage access, no rollback needed)
// and operation failures (storage or business, raised mid-transaction).
package apperr

import (
	"errors"
	"fmt"
)

type InvalidError struct{ Msg string }

func (e *InvalidError) Error() string { return e.Msg }

// Invalid reports a validation failure on caller-supplied data.
func Invalid(format string, args ...any) error {
	return &InvalidError{Msg: fmt.Sprintf(format, args...)}
}

func IsInvalid(err error) bool {
	var ie *InvalidError
	return errors.As(err, &ie)
}

// OpError wraps a storage failure with the operation that hit it.
// The cause is preserved for diagnostics, never swallowed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

// Op wraps err as an operation failure. Returns nil for a nil err.
func Op(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
