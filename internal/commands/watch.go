package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/logging"
	"countdo/internal/service"
	"countdo/internal/tasklist"
	"countdo/internal/ui"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command, the interactive view with live
// countdowns.
type WatchCmd struct{}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return []string{"ui"} }
func (c *WatchCmd) Synopsis() string  { return "Open the interactive task view" }
func (c *WatchCmd) Usage() string     { return "countdo watch" }
func (c *WatchCmd) NeedsStore() bool  { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	bridge := ui.NewBridge()
	opts := []tasklist.Option{
		tasklist.WithPrompter(bridge),
		tasklist.WithNotifier(bridge),
	}
	// Log lines would tear the full-screen view
	if !cfg.Debug {
		opts = append(opts, tasklist.WithLogger(logging.Discard()))
	}

	ctrl, err := newController(cfg, svc, errOut, opts...)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := ctrl.Load(ctx); err != nil {
		ctrl.Close()
		return loadFailed(errOut, err)
	}

	if err := ui.Run(ctx, ctrl, bridge, ui.Options{
		Tick:   cfg.Settings.Tick(),
		Input:  in,
		Output: out,
	}); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
