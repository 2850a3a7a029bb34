package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/output"
	"countdo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It also runs for `countdo` with no args.
type ListCmd struct {
	clock
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks with their countdowns" }
func (c *ListCmd) Usage() string     { return "countdo list" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	ctrl, err := newController(cfg, svc, errOut, c.options()...)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		return loadFailed(errOut, err)
	}

	views := ctrl.Views(ctrl.Now())
	if len(views) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, v := range views {
		output.FormatView(out, i+1, v, ctrl.Location())
	}
	return exitcode.Success
}
