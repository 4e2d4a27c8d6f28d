package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomError_IsKind(t *testing.T) {
	err := NewNotFoundError("club 4 not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "club 4 not found", err.Error())
}

func TestCustomError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("decide request 9: %w", NewInvalidStateError("request already decided"))

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "request already decided", MessageOf(err))
}

func TestActionFailedError_KeepsCause(t *testing.T) {
	cause := NewNotFoundError("club 12 not found")
	err := NewActionFailedError("approval handler failed", cause)

	assert.True(t, errors.Is(err, ErrActionFailed))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "approval handler failed: club 12 not found", err.Error())
	assert.Equal(t, "approval handler failed", MessageOf(err))
}
