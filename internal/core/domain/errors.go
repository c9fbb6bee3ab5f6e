package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Point lifecycle errors.

	// ErrValidation indicates a required field is missing at commit time.
	// The operation is aborted and the point keeps its prior state.
	ErrValidation = errors.New("validation failed")

	// ErrCapacity indicates the point or image limit has been reached.
	ErrCapacity = errors.New("capacity reached")

	// ErrPersistence indicates a remote create/update/delete/image call failed.
	ErrPersistence = errors.New("persistence failed")

	// ErrPickMiss indicates a ray pick found no intersection with the mesh.
	// It is never shown to the user.
	ErrPickMiss = errors.New("pick missed mesh")

	// ErrNoExam indicates an operation needs an open exam session.
	ErrNoExam = errors.New("no exam open")

	// ErrNoSelection indicates an operation needs a selected point.
	ErrNoSelection = errors.New("no point selected")

	// ErrCancelled indicates the user declined a confirmation prompt.
	ErrCancelled = errors.New("cancelled by user")

	// ErrConfirmationRequired indicates a destructive change was requested
	// without the confirmation it needs.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrStaleSession indicates an async resolution arrived after the owning
	// exam session was replaced. The result is discarded.
	ErrStaleSession = errors.New("exam session changed")
)

// PersistenceError wraps a failed Persistence Gateway call.
// errors.Is(err, ErrPersistence) reports true for it.
type PersistenceError struct {
	// Op names the gateway operation, e.g. "create point".
	Op string

	// Err is the underlying failure.
	Err error
}

// NewPersistenceError wraps err for the given gateway operation.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
