package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("event not found")
	ErrForbidden = errors.New("only the creator of an event may modify it")
)

// ValidationError reports a malformed or missing field. It is user-correctable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure. The API never shows its detail.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
