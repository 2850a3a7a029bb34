package tasklist

import (
	"fmt"
	"strings"
	"time"

	"countdo/internal/service"
)

// ExpiredMarker is the countdown text once a deadline has passed.
const ExpiredMarker = "Time's up!"

// EditLayout is the layout deadlines are presented in for editing.
const EditLayout = "2006-01-02T15:04"

// State is the derived display status of a task. It is never persisted.
type State int

const (
	Active State = iota
	Expired
	Completed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mark is the one-character list marker for s.
func (s State) Mark() string {
	switch s {
	case Completed:
		return "x"
	case Expired:
		return "!"
	default:
		return " "
	}
}

// deadlineLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline parses an ISO-8601 deadline string.
// Strings without a zone offset are interpreted in loc (time.Local if nil).
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline: %q", s)
}

// DeriveState computes the display state of a task.
// Completed dominates; otherwise a task is Expired once now reaches the deadline.
func DeriveState(completed bool, deadline, now time.Time) State {
	if completed {
		return Completed
	}
	if !now.Before(deadline) {
		return Expired
	}
	return Active
}

// Countdown formats the time left until deadline as "{h}h {m}m {s}s".
// Hours are not folded into days. At or past the deadline it returns
// ExpiredMarker.
func Countdown(deadline, now time.Time) string {
	if !deadline.After(now) {
		return ExpiredMarker
	}
	// Sub saturates at about 292 years.
	secs := deadline.Unix() - now.Unix()
	if deadline.Nanosecond() < now.Nanosecond() {
		secs--
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// View is a task together with its derived state at a given instant.
type View struct {
	Task      service.Task
	State     State
	Remaining string
}

// NewView derives the view of t at now. A deadline that does not parse has
// no future moment to count down to, so the task reads as expired.
func NewView(t service.Task, now time.Time, loc *time.Location) View {
	deadline, err := ParseDeadline(t.Deadline, loc)
	if err != nil {
		state := Expired
		if t.Completed {
			state = Completed
		}
		return View{Task: t, State: state, Remaining: ExpiredMarker}
	}
	return View{
		Task:      t,
		State:     DeriveState(t.Completed, deadline, now),
		Remaining: Countdown(deadline, now),
	}
}

// FormatDeadline renders a stored deadline for display or editing in loc.
// Unparseable values are returned unchanged.
func FormatDeadline(s, layout string, loc *time.Location) string {
	t, err := ParseDeadline(s, loc)
	if err != nil {
		return s
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}
