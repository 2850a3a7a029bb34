package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/service"
	"countdo/internal/taskfile"
	"countdo/internal/tasklist"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command. Every entry becomes a new task;
// nothing is matched against existing tasks.
type ImportCmd struct {
	format string
}

// SetFormat sets the format flag (for testing).
func (c *ImportCmd) SetFormat(format string) {
	c.format = format
}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Create tasks from a json or yaml file" }
func (c *ImportCmd) Usage() string {
	return "countdo import [--format json|yaml] <file|->"
}
func (c *ImportCmd) NeedsStore() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "")
	fs.StringVar(&c.format, "f", "", "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: file required (use - for stdin)")
		return exitcode.UserError
	}

	path := args[0]
	format := c.format
	if format == "" {
		format = taskfile.FormatFromPath(path)
	}

	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		r = f
	}

	entries, err := taskfile.Decode(r, format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctrl, err := newController(cfg, svc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		return loadFailed(errOut, err)
	}

	imported := 0
	for _, e := range entries {
		before := taskIDs(ctrl)
		if err := ctrl.CreateTask(ctx, e.Text, e.Deadline); err != nil {
			if !cfg.Quiet && imported > 0 {
				fmt.Fprintf(out, "imported %d tasks\n", imported)
			}
			return actionFailed(errOut, err)
		}
		imported++

		if !e.Completed {
			continue
		}
		id, ok := newTaskID(ctrl, before)
		if !ok {
			fmt.Fprintf(errOut, "error: could not find imported task %q to mark completed\n", e.Text)
			continue
		}
		if err := ctrl.ToggleCompletion(ctx, id); err != nil {
			return actionFailed(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d tasks\n", imported)
	}
	return exitcode.Success
}

func taskIDs(ctrl *tasklist.Controller) map[string]bool {
	ids := make(map[string]bool)
	for _, t := range ctrl.Tasks() {
		ids[t.ID] = true
	}
	return ids
}

// newTaskID returns the id of a task that is not in before.
func newTaskID(ctrl *tasklist.Controller, before map[string]bool) (string, bool) {
	for _, t := range ctrl.Tasks() {
		if !before[t.ID] {
			return t.ID, true
		}
	}
	return "", false
}
