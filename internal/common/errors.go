// Package common defines the sentinel errors shared by the checklists server
// layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Identity errors.
	ErrDuplicateIdentity = errors.New("email already taken")
	ErrUnknownAccount    = errors.New("unknown account")
	ErrLoginFailed       = errors.New("incorrect email or password")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// Checklist errors.
	ErrUnknownChecklist = errors.New("unknown checklist")
	ErrUnknownStep      = errors.New("unknown step")
)

// LookupError reports a missing entity together with the key it was looked up by.
// It unwraps to one of the Unknown* sentinels.
type LookupError struct {
	Err error
	Key string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Key)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func UnknownAccountID(id int64) error {
	return &LookupError{Err: ErrUnknownAccount, Key: fmt.Sprintf("id=%d", id)}
}

func UnknownAccountEmail(email string) error {
	return &LookupError{Err: ErrUnknownAccount, Key: "email=" + email}
}

func UnknownChecklist(id int64) error {
	return &LookupError{Err: ErrUnknownChecklist, Key: fmt.Sprintf("id=%d", id)}
}

func UnknownStep(id int64) error {
	return &LookupError{Err: ErrUnknownStep, Key: fmt.Sprintf("id=%d", id)}
}

// Validation wraps ErrorValidation with a human-readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
