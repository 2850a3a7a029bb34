package testutil

import (
	"context"
	"sync"

	"countdo/internal/tasklist"
)

// FakePrompter returns canned dialog answers and records what it was asked.
type FakePrompter struct {
	mu sync.Mutex

	// Form is returned by PromptTask. Nil means Cancelled.
	Form tasklist.FormResult
	// Confirmed is returned by Confirm.
	Confirmed bool
	// Err is returned by both methods when set.
	Err error

	Titles    []string
	Defaults  []tasklist.Submitted
	Questions []string
}

// PromptTask implements tasklist.Prompter.
func (p *FakePrompter) PromptTask(ctx context.Context, title string, defaults tasklist.Submitted) (tasklist.FormResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Titles = append(p.Titles, title)
	p.Defaults = append(p.Defaults, defaults)
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Form == nil {
		return tasklist.Cancelled{}, nil
	}
	return p.Form, nil
}

// Confirm implements tasklist.Prompter.
func (p *FakePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Questions = append(p.Questions, question)
	if p.Err != nil {
		return false, p.Err
	}
	return p.Confirmed, nil
}

// RecordingNotifier keeps every notification it receives.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []tasklist.Notification
}

// Notify implements tasklist.Notifier.
func (r *RecordingNotifier) Notify(n tasklist.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns the notifications received so far.
func (r *RecordingNotifier) All() []tasklist.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tasklist.Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Levels returns the level of each notification, in order.
func (r *RecordingNotifier) Levels() []tasklist.Level {
	var levels []tasklist.Level
	for _, n := range r.All() {
		levels = append(levels, n.Level)
	}
	return levels
}
