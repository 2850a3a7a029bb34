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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. Completed tasks become active
// again and active or expired tasks become completed.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task completed, or not completed" }
func (c *ToggleCmd) Usage() string     { return "countdo toggle <n>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
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

	if err := ctrl.ToggleCompletion(ctx, task.ID); err != nil {
		return actionFailed(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
