package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"countdo/internal/commands"
	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/service"
	"countdo/internal/testutil"
)

var fixedNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	settings := config.DefaultSettings()
	settings.TimeZone = "UTC"
	return &config.Config{
		Dir:      t.TempDir(),
		Quiet:    quiet,
		Settings: settings,
	}
}

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandWithInput(t, cmd, svc, args, "", quiet)
}

func runCommandWithInput(t *testing.T, cmd commands.Command, svc service.Service, args []string, input string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	cfg := testConfig(t, quiet)

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, strings.NewReader(input), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("task1", "Write report", "2030-06-01T13:01:01Z", false)
	svc.AddTask("task2", "Call mom", "2030-05-01T00:00", true)
	svc.AddTask("task3", "Pay rent", "2030-05-31", false)
	svc.AddTask("task4", "Plan trip", "2030-06-03T12:00", false)
	return svc
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "countdo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "countdo add", "countdo watch", "countdo export"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_MixedStates(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetClock(fixedClock)

	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_mixed", stdout)
}

func TestListCommand_Empty(t *testing.T) {
	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, testutil.NewFakeService(), nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	// Quiet mode should suppress "no tasks found"
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_LoadFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListAllErr = errors.New("connection refused")

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "error: backend error:") || !strings.Contains(stderr, "connection refused") {
		t.Errorf("expected backend error, got %q", stderr)
	}
}

func TestListCommand_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListAllErr = service.ErrUnauthorized

	cmd := &commands.ListCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "error: auth error:") {
		t.Errorf("expected auth error, got %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetDeadline("2030-06-02T09:00")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	task, ok := svc.Get("task-1")
	if !ok {
		t.Fatal("task was not created")
	}
	if task.Text != "Buy milk" || task.Deadline != "2030-06-02T09:00" || task.Completed {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetDeadline("2030-06-02")
	stdout, _, code := runCommand(t, cmd, testutil.NewFakeService(), []string{"Buy milk"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_Validation(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		deadline string
		want     string
	}{
		{"no text", nil, "2030-06-02", "error: text is required\n"},
		{"blank text", []string{"  "}, "2030-06-02", "error: text is required\n"},
		{"no deadline", []string{"Buy milk"}, "", "error: deadline is required\n"},
		{"bad deadline", []string{"Buy milk"}, "tomorrow", "error: deadline: not an ISO-8601 date or time\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			cmd := &commands.AddCmd{}
			cmd.SetDeadline(tc.deadline)

			_, stderr, code := runCommand(t, cmd, svc, tc.args, false)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tc.want {
				t.Errorf("expected %q, got %q", tc.want, stderr)
			}
			if svc.TotalCalls() != 0 {
				t.Errorf("expected no store calls, got %d", svc.TotalCalls())
			}
		})
	}
}

func TestAddCommand_StoreFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateErr = errors.New("disk full")

	cmd := &commands.AddCmd{}
	cmd.SetDeadline("2030-06-02")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy milk"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "error: Failed to add task.") {
		t.Errorf("expected failure notification, got %q", stderr)
	}
}

// Tests for toggle command
func TestToggleCommand_Success(t *testing.T) {
	svc := seeded()

	cmd := &commands.ToggleCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if task, _ := svc.Get("task1"); !task.Completed {
		t.Error("task1 should be completed")
	}

	// Toggling a completed task reopens it
	runCommand(t, cmd, svc, []string{"2"}, true)
	if task, _ := svc.Get("task2"); task.Completed {
		t.Error("task2 should no longer be completed")
	}
}

func TestToggleCommand_BadRefs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no ref", nil, "error: task reference required\n"},
		{"not a number", []string{"abc"}, "error: invalid task reference: abc\n"},
		{"zero", []string{"0"}, "error: task number out of range: 0\n"},
		{"past end", []string{"99"}, "error: task number out of range: 99\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := seeded()
			cmd := &commands.ToggleCmd{}

			_, stderr, code := runCommand(t, cmd, svc, tc.args, false)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tc.want {
				t.Errorf("expected %q, got %q", tc.want, stderr)
			}
			if svc.UpdateFieldsCalls != 0 {
				t.Errorf("expected no updates, got %d", svc.UpdateFieldsCalls)
			}
		})
	}
}

func TestToggleCommand_StoreFailure(t *testing.T) {
	svc := seeded()
	svc.UpdateFieldsErr = service.ErrTimeout

	cmd := &commands.ToggleCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "error: Failed to update task status.") {
		t.Errorf("expected failure notification, got %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_TextOnly(t *testing.T) {
	svc := seeded()

	cmd := &commands.EditCmd{}
	cmd.SetFields("Write the report", "")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	task, _ := svc.Get("task1")
	if task.Text != "Write the report" || task.Deadline != "2030-06-01T13:01:01Z" {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestEditCommand_Deadline(t *testing.T) {
	svc := seeded()

	cmd := &commands.EditCmd{}
	cmd.SetFields("", "2030-07-01T08:00")
	_, _, code := runCommand(t, cmd, svc, []string{"3"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	task, _ := svc.Get("task3")
	if task.Text != "Pay rent" || task.Deadline != "2030-07-01T08:00" {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := seeded()

	cmd := &commands.EditCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("expected no store calls, got %d", svc.TotalCalls())
	}
}

func TestEditCommand_InvalidDeadline(t *testing.T) {
	svc := seeded()

	cmd := &commands.EditCmd{}
	cmd.SetFields("", "next week")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: deadline: not an ISO-8601 date or time\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.UpdateFieldsCalls != 0 {
		t.Errorf("expected no updates, got %d", svc.UpdateFieldsCalls)
	}
}

// Tests for rm command
func TestRmCommand_Confirmed(t *testing.T) {
	svc := seeded()

	cmd := &commands.RmCmd{}
	stdout, stderr, code := runCommandWithInput(t, cmd, svc, []string{"2"}, "y\n", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "Delete \"Call mom\"? [y/N] " {
		t.Errorf("unexpected prompt %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if _, ok := svc.Get("task2"); ok {
		t.Error("task2 should be deleted")
	}
	if svc.Len() != 3 {
		t.Errorf("expected 3 tasks left, got %d", svc.Len())
	}
}

func TestRmCommand_Declined(t *testing.T) {
	for _, input := range []string{"n\n", "\n", "maybe\n", ""} {
		svc := seeded()

		cmd := &commands.RmCmd{}
		stdout, _, code := runCommandWithInput(t, cmd, svc, []string{"1"}, input, false)

		if code != exitcode.Success {
			t.Errorf("input %q: expected exit code %d, got %d", input, exitcode.Success, code)
		}
		if stdout != "cancelled\n" {
			t.Errorf("input %q: expected 'cancelled', got %q", input, stdout)
		}
		if svc.DeleteCalls != 0 {
			t.Errorf("input %q: expected no deletes, got %d", input, svc.DeleteCalls)
		}
	}
}

func TestRmCommand_Yes(t *testing.T) {
	svc := seeded()

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"4"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no prompt, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if _, ok := svc.Get("task4"); ok {
		t.Error("task4 should be deleted")
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	cmd := &commands.RmCmd{}
	_, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmCommand_StoreFailure(t *testing.T) {
	svc := seeded()
	svc.DeleteErr = service.ErrNotFound

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "error: Failed to delete task.") {
		t.Errorf("expected failure notification, got %q", stderr)
	}
}

// Tests for export command
func TestExportCommand_CSV(t *testing.T) {
	cmd := &commands.ExportCmd{}
	cmd.SetClock(fixedClock)
	cmd.SetOptions("csv", "")

	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "export_csv", stdout)
}

func TestExportCommand_FileFormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")

	cmd := &commands.ExportCmd{}
	cmd.SetClock(fixedClock)
	cmd.SetOptions("", path)

	stdout, _, code := runCommand(t, cmd, seeded(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "exported 4 tasks to "+path+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "- id: task1\n") || !strings.Contains(string(data), "state: expired") {
		t.Errorf("export does not look like yaml:\n%s", data)
	}
}

func TestExportCommand_PDFNeedsOutput(t *testing.T) {
	svc := seeded()

	cmd := &commands.ExportCmd{}
	cmd.SetOptions("pdf", "")
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: pdf export needs --output\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("expected no store calls, got %d", svc.TotalCalls())
	}
}

// Tests for import command
func TestImportCommand_FromStdin(t *testing.T) {
	svc := testutil.NewFakeService()
	input := `[
  {"text": "Buy milk", "deadline": "2030-06-02"},
  {"text": "File taxes", "deadline": "2030-04-15T23:59", "completed": true}
]`

	cmd := &commands.ImportCmd{}
	stdout, stderr, code := runCommandWithInput(t, cmd, svc, []string{"-"}, input, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "imported 2 tasks\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	first, _ := svc.Get("task-1")
	second, _ := svc.Get("task-2")
	if first.Text != "Buy milk" || first.Completed {
		t.Errorf("unexpected first task %+v", first)
	}
	if second.Text != "File taxes" || !second.Completed {
		t.Errorf("unexpected second task %+v", second)
	}
}

func TestImportCommand_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yml")
	content := "- text: Water plants\n  deadline: \"2030-06-05T18:00\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	svc := testutil.NewFakeService()
	cmd := &commands.ImportCmd{}
	_, _, code := runCommand(t, cmd, svc, []string{path}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if task, ok := svc.Get("task-1"); !ok || task.Text != "Water plants" {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestImportCommand_SchemaViolation(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ImportCmd{}
	_, stderr, code := runCommandWithInput(t, cmd, svc, []string{"-"}, `[{"text": "No deadline"}]`, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid task file:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("expected no store calls, got %d", svc.TotalCalls())
	}
}

func TestImportCommand_NoFile(t *testing.T) {
	cmd := &commands.ImportCmd{}
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "file required") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Commands that need a store must say so; the dispatcher relies on it.
func TestNeedsStore(t *testing.T) {
	want := map[string]bool{
		"list": true, "add": true, "edit": true, "toggle": true, "rm": true,
		"watch": true, "export": true, "import": true,
		"login": false, "logout": false, "help": false, "version": false,
	}
	for name, needs := range want {
		cmd, ok := commands.DefaultRegistry.Find(name)
		if !ok {
			t.Errorf("command %q is not registered", name)
			continue
		}
		if cmd.NeedsStore() != needs {
			t.Errorf("%s: NeedsStore() = %v, want %v", name, cmd.NeedsStore(), needs)
		}
	}
}

func TestRegistry_FindsAliases(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ToggleCmd{}); err != nil {
		t.Fatalf("register toggle: %v", err)
	}

	cmd, ok := r.Find("done")
	if !ok || cmd.Name() != "toggle" {
		t.Errorf("expected 'done' to find toggle, got %v", cmd)
	}
	if len(r.All()) != 1 {
		t.Errorf("aliases should not be listed separately, got %d commands", len(r.All()))
	}
}

func TestRegistry_RejectsClashes(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("register add: %v", err)
	}

	if err := r.Register(&commands.AddCmd{}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	// RmCmd's alias "delete" is free, so it registers
	if err := r.Register(&commands.RmCmd{}); err != nil {
		t.Errorf("register rm: %v", err)
	}
	if _, ok := r.Find("create"); !ok {
		t.Error("expected the 'create' alias to resolve")
	}
}

func TestHelpCommand_ListsRegisteredCommands(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, cmd.Usage()) {
			t.Errorf("help output is missing %q", cmd.Usage())
		}
	}
	if !strings.Contains(stdout, "(also: done)") {
		t.Error("help output should mention the done alias")
	}
}
