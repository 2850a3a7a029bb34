// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"countdo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Errors it returns are *service.StoreError, like the real backends.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// Error injection for testing
	ListAllErr      error
	CreateErr       error
	UpdateFieldsErr error
	DeleteErr       error

	// Call counters
	ListAllCalls      int
	CreateCalls       int
	UpdateFieldsCalls int
	DeleteCalls       int

	// CreateHook, if set, runs inside Create before the record is stored.
	// Tests use it to block a create while it is in flight.
	CreateHook func()
}

// NewFakeService creates a new, empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// AddTask seeds a task directly, bypassing counters and error injection.
func (f *FakeService) AddTask(id, text, deadline string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:        id,
		Text:      text,
		Completed: completed,
		Deadline:  deadline,
	})
}

// Get returns the stored task with the given id.
func (f *FakeService) Get(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Len returns the number of stored tasks.
func (f *FakeService) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tasks)
}

// TotalCalls returns the number of store calls made so far.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ListAllCalls + f.CreateCalls + f.UpdateFieldsCalls + f.DeleteCalls
}

// ListAll implements service.Service.
func (f *FakeService) ListAll(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.ListAllCalls++
	f.mu.Unlock()
	if f.ListAllErr != nil {
		return nil, service.Wrap("list", "", f.ListAllErr)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result, nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, text, deadline string) (string, error) {
	f.mu.Lock()
	f.CreateCalls++
	hook := f.CreateHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.CreateErr != nil {
		return "", service.Wrap("create", "", f.CreateErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Generate a simple ID
	f.nextID++
	id := fmt.Sprintf("task-%d", f.nextID)
	f.tasks = append(f.tasks, service.Task{
		ID:       id,
		Text:     text,
		Deadline: deadline,
	})
	return id, nil
}

// UpdateFields implements service.Service.
func (f *FakeService) UpdateFields(ctx context.Context, id string, fields service.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateFieldsCalls++
	if f.UpdateFieldsErr != nil {
		return service.Wrap("update", id, f.UpdateFieldsErr)
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = fields.Apply(t)
			return nil
		}
	}
	return service.Wrap("update", id, service.ErrNotFound)
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return service.Wrap("delete", id, f.DeleteErr)
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.Wrap("delete", id, service.ErrNotFound)
}
