package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Fields without a flag keep their value.
type EditCmd struct {
	text     string
	deadline string
}

// SetFields sets the text and deadline flags (for testing).
func (c *EditCmd) SetFields(text, deadline string) {
	c.text = text
	c.deadline = deadline
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's text or deadline" }
func (c *EditCmd) Usage() string {
	return "countdo edit [--text <text>] [--deadline <time>] <n>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.text, "text", "", "")
	fs.StringVar(&c.text, "t", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.StringVar(&c.deadline, "d", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if c.text == "" && c.deadline == "" {
		fmt.Fprintln(errOut, "error: nothing to change (use --text or --deadline)")
		return exitcode.UserError
	}

	ctrl, err := newController(cfg, svc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer ctrl.Close()

	task, code, ok := loadTask(ctx, ctrl, args, errOut)
	if !ok {
		return code
	}

	text, deadline := task.Text, task.Deadline
	if c.text != "" {
		text = c.text
	}
	if c.deadline != "" {
		deadline = c.deadline
	}

	if err := ctrl.UpdateTask(ctx, task.ID, text, deadline); err != nil {
		return actionFailed(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
