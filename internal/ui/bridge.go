package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"countdo/internal/tasklist"
)

// formRequestMsg asks the model to open the task form.
type formRequestMsg struct {
	title    string
	defaults tasklist.Submitted
	reply    chan tasklist.FormResult
}

// confirmRequestMsg asks the model for a yes/no answer.
type confirmRequestMsg struct {
	question string
	reply    chan bool
}

// notifyMsg carries a controller notification to the status line.
type notifyMsg struct {
	n tasklist.Notification
}

// Bridge is the controller's Prompter and Notifier inside the watch view.
// Requests are posted to the running program and answered by the model.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge returns a bridge with no program attached. Until Attach is
// called every form is cancelled, every question declined and every
// notification dropped.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes requests to send, normally (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) sender() func(tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send
}

// PromptTask implements tasklist.Prompter.
func (b *Bridge) PromptTask(ctx context.Context, title string, defaults tasklist.Submitted) (tasklist.FormResult, error) {
	send := b.sender()
	if send == nil {
		return tasklist.Cancelled{}, nil
	}
	reply := make(chan tasklist.FormResult, 1)
	send(formRequestMsg{title: title, defaults: defaults, reply: reply})

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Confirm implements tasklist.Prompter.
func (b *Bridge) Confirm(ctx context.Context, question string) (bool, error) {
	send := b.sender()
	if send == nil {
		return false, nil
	}
	reply := make(chan bool, 1)
	send(confirmRequestMsg{question: question, reply: reply})

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Notify implements tasklist.Notifier.
func (b *Bridge) Notify(n tasklist.Notification) {
	if send := b.sender(); send != nil {
		send(notifyMsg{n: n})
	}
}
