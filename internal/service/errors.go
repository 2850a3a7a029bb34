package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the id does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the credentials were missing, expired or lacked permission.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout means the store did not answer within the call timeout.
	ErrTimeout = errors.New("request timed out")
)

// StoreError is returned by every Service implementation on failure.
type StoreError struct {
	Op  string // list, create, update, delete
	ID  string // empty for list and create
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Wrap returns err as a *StoreError, or nil if err is nil.
// An err that is already a *StoreError is returned unchanged.
func Wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// IsStoreError reports whether err carries a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
