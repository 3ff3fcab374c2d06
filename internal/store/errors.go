package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when a record fails validation before it
	// reaches the database.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError wraps a failed store operation.
type StoreError struct {
	Op      string
	Err     error
	Details string
}

func (e *StoreError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func wrap(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err, Details: details}
}
