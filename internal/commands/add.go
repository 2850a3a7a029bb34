package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	deadline string
}

// SetDeadline sets the deadline flag (for testing).
func (c *AddCmd) SetDeadline(deadline string) {
	c.deadline = deadline
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "countdo add --deadline <time> <text...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.StringVar(&c.deadline, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	ctrl, err := newController(cfg, svc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer ctrl.Close()

	// Join args to form the text; validation happens in the controller
	text := strings.Join(args, " ")
	if err := ctrl.CreateTask(ctx, text, c.deadline); err != nil {
		return actionFailed(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
