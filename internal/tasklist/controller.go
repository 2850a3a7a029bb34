// Package tasklist owns the in-memory task collection, derives per-task
// countdown state and implements the user-facing task actions.
package tasklist

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"countdo/internal/service"
)

// Option configures a Controller.
type Option func(*Controller)

// WithPrompter sets the dialog collaborator.
func WithPrompter(p Prompter) Option {
	return func(c *Controller) {
		c.prompter = p
	}
}

// WithNotifier sets the notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithLogger sets the logger store failures are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLocation sets the zone deadlines without an offset are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		c.loc = loc
	}
}

// Controller is the task list controller. The store is the source of truth;
// the controller keeps the last-known-good copy of it.
type Controller struct {
	svc      service.Service
	prompter Prompter
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	loc      *time.Location

	mu     sync.RWMutex
	tasks  []service.Task
	closed bool

	adding atomic.Bool
}

// New creates a controller over svc. The collection is empty until Load.
func New(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		prompter: declinePrompter{},
		notifier: nopNotifier{},
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Now returns the controller's current time.
func (c *Controller) Now() time.Time { return c.now() }

// Location returns the zone deadlines are interpreted in.
func (c *Controller) Location() *time.Location { return c.loc }

// Tasks returns a copy of the collection in display order.
func (c *Controller) Tasks() []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Find returns the task with the given id.
func (c *Controller) Find(id string) (service.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Views derives the state of every task at now. The whole list is
// recomputed on each call.
func (c *Controller) Views(now time.Time) []View {
	tasks := c.Tasks()
	views := make([]View, len(tasks))
	for i, t := range tasks {
		views[i] = NewView(t, now, c.loc)
	}
	return views
}

// Adding reports whether an add is in flight.
func (c *Controller) Adding() bool { return c.adding.Load() }

// Close disposes the controller. Store calls that resolve afterwards leave
// the collection alone and raise no notifications.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Load replaces the collection with the store's contents. On failure the
// previous collection is kept.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.ListAll(ctx)
	if err != nil {
		c.logger.Error("load tasks", "err", err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.tasks = tasks
	}
	return nil
}

// AddTask asks the prompter for a new task and creates it.
// A cancelled dialog is a no-op.
func (c *Controller) AddTask(ctx context.Context) error {
	res, err := c.prompter.PromptTask(ctx, "Add a new task", Submitted{})
	if err != nil {
		return err
	}
	form, ok := res.(Submitted)
	if !ok {
		return nil
	}
	return c.CreateTask(ctx, form.Text, form.Deadline)
}

// CreateTask validates and creates a task, then reloads the list.
// Only one create may be in flight; a second returns ErrAddInFlight.
func (c *Controller) CreateTask(ctx context.Context, text, deadline string) error {
	if err := c.validate(text, deadline); err != nil {
		return err
	}
	if !c.adding.CompareAndSwap(false, true) {
		return ErrAddInFlight
	}
	defer c.adding.Store(false)

	id, err := c.svc.Create(ctx, text, deadline)
	if err != nil {
		c.fail("add task", "", err, "Failed to add task.")
		return err
	}
	c.logger.Debug("task created", "id", id)

	if err := c.reload(ctx); err != nil {
		return err
	}
	c.notify(Notification{Level: LevelSuccess, Title: "Success!", Message: "Task added."})
	return nil
}

// ToggleCompletion flips the completed flag of a task. Unknown ids are a no-op.
func (c *Controller) ToggleCompletion(ctx context.Context, id string) error {
	task, ok := c.Find(id)
	if !ok {
		return nil
	}
	completed := !task.Completed

	if err := c.svc.UpdateFields(ctx, id, service.Fields{Completed: &completed}); err != nil {
		c.fail("toggle task", id, err, "Failed to update task status.")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].Completed = completed
		}
	}
	return nil
}

// DeleteTask asks for confirmation and deletes a task. Unknown ids are a
// no-op, and so is a declined confirmation.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	task, ok := c.Find(id)
	if !ok {
		return nil
	}

	confirmed, err := c.prompter.Confirm(ctx, fmt.Sprintf("Delete %q?", task.Text))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		c.fail("delete task", id, err, "Failed to delete task.")
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	kept := c.tasks[:0:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.mu.Unlock()

	c.notify(Notification{Level: LevelSuccess, Title: "Deleted!", Message: "Task deleted."})
	return nil
}

// EditTask prompts with the task's current values and saves the result.
// Unknown ids and a cancelled dialog are a no-op.
func (c *Controller) EditTask(ctx context.Context, id string) error {
	task, ok := c.Find(id)
	if !ok {
		return nil
	}

	defaults := Submitted{
		Text:     task.Text,
		Deadline: FormatDeadline(task.Deadline, EditLayout, c.loc),
	}
	res, err := c.prompter.PromptTask(ctx, "Edit task", defaults)
	if err != nil {
		return err
	}
	form, ok := res.(Submitted)
	if !ok {
		return nil
	}
	return c.UpdateTask(ctx, id, form.Text, form.Deadline)
}

// UpdateTask validates and writes new text and deadline, then reloads the list.
func (c *Controller) UpdateTask(ctx context.Context, id, text, deadline string) error {
	if err := c.validate(text, deadline); err != nil {
		return err
	}

	fields := service.Fields{Text: &text, Deadline: &deadline}
	if err := c.svc.UpdateFields(ctx, id, fields); err != nil {
		c.fail("update task", id, err, "Failed to update task.")
		return err
	}

	if err := c.reload(ctx); err != nil {
		return err
	}
	c.notify(Notification{Level: LevelSuccess, Title: "Success!", Message: "Task updated."})
	return nil
}

// reload runs after a successful write. A failed reload keeps the old list.
func (c *Controller) reload(ctx context.Context) error {
	if err := c.Load(ctx); err != nil {
		c.notify(Notification{
			Level:   LevelError,
			Title:   "Error!",
			Message: "Saved, but the task list could not be refreshed.",
			Err:     err,
		})
		return err
	}
	return nil
}

func (c *Controller) validate(text, deadline string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text"}
	}
	if strings.TrimSpace(deadline) == "" {
		return &ValidationError{Field: "deadline"}
	}
	if _, err := ParseDeadline(deadline, c.loc); err != nil {
		return &ValidationError{Field: "deadline", Reason: "not an ISO-8601 date or time"}
	}
	return nil
}

func (c *Controller) fail(action, id string, err error, message string) {
	c.logger.Error(action, "id", id, "err", err)
	c.notify(Notification{Level: LevelError, Title: "Error!", Message: message, Err: err})
}

func (c *Controller) notify(n Notification) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return
	}
	c.notifier.Notify(n)
}
