package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"countdo/internal/service"
	"countdo/internal/tasklist"
)

var now = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFormatView(t *testing.T) {
	cases := []struct {
		task service.Task
		want string
	}{
		{
			service.Task{Text: "Write report", Deadline: "2030-06-01T13:01:01Z"},
			"   1  [ ] Write report  (2030-06-01 13:01 | 1h 1m 1s)\n",
		},
		{
			service.Task{Text: "Call mom", Deadline: "2030-05-01T00:00", Completed: true},
			"   1  [x] Call mom  (2030-05-01 00:00 | done)\n",
		},
		{
			service.Task{Text: "Pay rent", Deadline: "2030-05-31"},
			"   1  [!] Pay rent  (2030-05-31 00:00 | Time's up!)\n",
		},
		{
			service.Task{Text: "line\nbreak", Deadline: "someday"},
			"   1  [!] line break  (someday | Time's up!)\n",
		},
		{
			service.Task{Text: "  ", Deadline: "2030-06-02"},
			"   1  [ ] (untitled)  (2030-06-02 00:00 | 12h 0m 0s)\n",
		},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		FormatView(&buf, 1, tasklist.NewView(tc.task, now, time.UTC), time.UTC)
		if buf.String() != tc.want {
			t.Errorf("FormatView(%q) = %q, want %q", tc.task.Text, buf.String(), tc.want)
		}
	}
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	n.Notify(tasklist.Notification{Level: tasklist.LevelSuccess, Title: "Success!", Message: "Task added."})
	if buf.Len() != 0 {
		t.Errorf("success should be silent, got %q", buf.String())
	}

	n.Notify(tasklist.Notification{Level: tasklist.LevelError, Message: "Failed to add task.", Err: errors.New("boom")})
	if buf.String() != "error: Failed to add task. (boom)\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
