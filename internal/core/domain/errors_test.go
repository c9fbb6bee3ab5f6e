package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrValidation", ErrValidation},
		{"ErrCapacity", ErrCapacity},
		{"ErrPersistence", ErrPersistence},
		{"ErrPickMiss", ErrPickMiss},
		{"ErrNoExam", ErrNoExam},
		{"ErrNoSelection", ErrNoSelection},
		{"ErrCancelled", ErrCancelled},
		{"ErrConfirmationRequired", ErrConfirmationRequired},
		{"ErrStaleSession", ErrStaleSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrNotFound tests ErrNotFound error
func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestErrCapacity_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: exam holds %d points", ErrCapacity, MaxPointsPerExam)
	assert.True(t, errors.Is(err, ErrCapacity))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestPersistenceError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError("create point", cause)

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "create point: connection refused", err.Error())
}

func TestPersistenceError_As(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", NewPersistenceError("update point", ErrNotFound))

	var pe *PersistenceError
	assert.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "update point", pe.Op)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}
