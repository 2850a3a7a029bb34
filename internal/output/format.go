// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"countdo/internal/tasklist"
)

// DeadlineLayout is how deadlines are shown in list output.
const DeadlineLayout = "2006-01-02 15:04"

// FormatView formats a task line for the list command.
// Format: "{N:>4}  [{mark}] {text}  ({deadline} | {countdown})\n"
func FormatView(w io.Writer, num int, v tasklist.View, loc *time.Location) {
	remaining := v.Remaining
	if v.State == tasklist.Completed {
		remaining = "done"
	}
	deadline := tasklist.FormatDeadline(v.Task.Deadline, DeadlineLayout, loc)
	fmt.Fprintf(w, "%4d  [%s] %s  (%s | %s)\n", num, v.State.Mark(), normalizeText(v.Task.Text), deadline, remaining)
}

// normalizeText normalizes a task text for display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}

// Notifier prints controller notifications for the CLI. Successes are left
// to the commands, which print "ok".
type Notifier struct {
	w io.Writer
}

// NewNotifier creates a notifier writing to w (normally stderr).
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Notify implements tasklist.Notifier.
func (n *Notifier) Notify(note tasklist.Notification) {
	if note.Level != tasklist.LevelError {
		return
	}
	if note.Err != nil {
		fmt.Fprintf(n.w, "error: %s (%v)\n", note.Message, note.Err)
		return
	}
	fmt.Fprintf(n.w, "error: %s\n", note.Message)
}
