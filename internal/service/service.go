// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// DefaultCollection is the collection (or table) that holds task records.
const DefaultCollection = "tasks"

// Service defines the interface for task store operations.
// All document store calls go through this interface.
// The controller and commands never import a store SDK directly.
type Service interface {
	// ListAll returns every task in the collection, in the order the
	// store returns them.
	ListAll(ctx context.Context) ([]Task, error)

	// Create inserts a new task with completed=false and returns the
	// store-assigned id.
	Create(ctx context.Context, text, deadline string) (string, error)

	// UpdateFields merges the set fields into an existing record.
	// Returns ErrNotFound (wrapped) if the id does not exist.
	UpdateFields(ctx context.Context, id string, fields Fields) error

	// Delete removes a record.
	// Returns ErrNotFound (wrapped) if the id does not exist.
	Delete(ctx context.Context, id string) error
}
