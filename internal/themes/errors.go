// Package themes derives, forks and persists user themes.
package themes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrThemeNotFound   = errors.New("theme not found")
	ErrBuiltInReadOnly = errors.New("built-in themes are read-only")
	ErrMissingOwner    = errors.New("edit has no owning user")
	ErrNotOwner        = errors.New("theme belongs to another user")
	ErrInvalidMode     = errors.New("mode must be light or dark")
	ErrUnknownToken    = errors.New("unknown color token")
	ErrSessionNotFound = errors.New("editor session not found")
)

// PersistError wraps a storage failure. Callers keep their in-memory draft
// and may retry the same operation.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func (e *PersistError) Retryable() bool {
	return true
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *PersistError
	if errors.As(err, &existing) {
		return err
	}
	return &PersistError{Op: op, Err: err}
}

// FieldError describes one rejected field of a theme payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors rejects a payload as a whole.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fieldErr := range v {
		parts = append(parts, fieldErr.Field+": "+fieldErr.Message)
	}
	return "invalid theme payload: " + strings.Join(parts, "; ")
}
