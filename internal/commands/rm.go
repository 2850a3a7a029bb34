package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/service"
	"countdo/internal/tasklist"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "countdo rm [--yes] <n>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	prompter := newLinePrompter(in, errOut, c.yes)
	ctrl, err := newController(cfg, svc, errOut, tasklist.WithPrompter(prompter))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer ctrl.Close()

	task, code, ok := loadTask(ctx, ctrl, args, errOut)
	if !ok {
		return code
	}

	if err := ctrl.DeleteTask(ctx, task.ID); err != nil {
		return actionFailed(errOut, err)
	}

	// Still there means the confirmation was declined
	if _, found := ctrl.Find(task.ID); found {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
