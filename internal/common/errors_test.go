package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupError_UnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		text     string
	}{
		{"account by id", UnknownAccountID(7), ErrUnknownAccount, "unknown account: id=7"},
		{"account by email", UnknownAccountEmail("a@x.com"), ErrUnknownAccount, "unknown account: email=a@x.com"},
		{"checklist", UnknownChecklist(3), ErrUnknownChecklist, "unknown checklist: id=3"},
		{"step", UnknownStep(9), ErrUnknownStep, "unknown step: id=9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.text, tt.err.Error())

			wrapped := fmt.Errorf("outer: %w", tt.err)
			var le *LookupError
			assert.True(t, errors.As(wrapped, &le))
		})
	}
}

func TestLookupError_DoesNotCrossMatch(t *testing.T) {
	assert.False(t, errors.Is(UnknownChecklist(1), ErrUnknownStep))
	assert.False(t, errors.Is(UnknownStep(1), ErrUnknownChecklist))
}

func TestValidation(t *testing.T) {
	err := Validation("title is required")
	assert.ErrorIs(t, err, ErrorValidation)
	assert.Equal(t, "validation error: title is required", err.Error())
}
