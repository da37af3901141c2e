package client

import (
	"errors"
	"fmt"

	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
)

// NotFoundError is returned when a lookup operation's identifier does not
// resolve to a stored element.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.ID) }

// InvalidArgumentError is returned when a caller-supplied argument fails
// validation before any storage operation is attempted.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Argument, e.Reason)
}

// ConstraintViolationError wraps a pkg/kernel uniqueness-constraint
// rejection in facade-facing terms.
type ConstraintViolationError struct {
	Label   string
	Message string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation on %s: %s", e.Label, e.Message)
}

// DanglingEdgeError is returned when an edge or NPE names an endpoint
// that does not exist in the store.
type DanglingEdgeError struct {
	From, To string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("dangling edge: %s -> %s", e.From, e.To)
}

// StorageError wraps an underlying kernel/graphstore failure that isn't
// one of the above well-known cases.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// classifyErr maps a pkg/kernel or pkg/graphstore error into the facade's
// typed-error vocabulary (spec.md §7). op names the facade operation for
// the wrapped StorageError fallback case.
func classifyErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kernel.ErrNotFound) {
		return &NotFoundError{ID: op}
	}
	if errors.Is(err, graphstore.ErrDanglingEdge) {
		return &DanglingEdgeError{}
	}
	var violation *kernel.ConstraintViolationError
	if errors.As(err, &violation) {
		return &ConstraintViolationError{Label: violation.Label, Message: violation.Message}
	}
	return &StorageError{Op: op, Err: err}
}
