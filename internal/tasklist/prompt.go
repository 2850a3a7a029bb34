package tasklist

import "context"

// FormResult is what the input dialog resolves to: Cancelled or Submitted.
type FormResult interface {
	isFormResult()
}

// Cancelled means the user dismissed the dialog.
type Cancelled struct{}

// Submitted carries the entered values. Also used to pass defaults in.
type Submitted struct {
	Text     string
	Deadline string
}

func (Cancelled) isFormResult() {}
func (Submitted) isFormResult() {}

// Prompter is the dialog collaborator. Implementations must not resolve a
// form with a blank field.
type Prompter interface {
	// PromptTask shows the two-field task form prefilled with defaults.
	PromptTask(ctx context.Context, title string, defaults Submitted) (FormResult, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
}

// Level is the severity of a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

// Notification is an informational message surfaced after an action.
type Notification struct {
	Level   Level
	Title   string
	Message string
	Err     error
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

// declinePrompter cancels every form and declines every confirmation, so a
// controller without a dialog never deletes anything.
type declinePrompter struct{}

func (declinePrompter) PromptTask(context.Context, string, Submitted) (FormResult, error) {
	return Cancelled{}, nil
}

func (declinePrompter) Confirm(context.Context, string) (bool, error) {
	return false, nil
}
