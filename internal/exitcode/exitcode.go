// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"countdo/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid task, out of range).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a store/network error.
	BackendError = 3
)

// For maps an error returned by a task action to an exit code.
// Store errors are backend errors unless the store rejected the credentials.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case service.IsStoreError(err):
		return BackendError
	default:
		return UserError
	}
}
