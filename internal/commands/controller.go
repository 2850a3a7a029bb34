package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"countdo/internal/config"
	"countdo/internal/exitcode"
	"countdo/internal/logging"
	"countdo/internal/output"
	"countdo/internal/service"
	"countdo/internal/tasklist"
)

// clock lets tests pin the time a command derives countdowns at.
type clock struct {
	now func() time.Time
}

// SetClock sets the time source (for testing).
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

func (c *clock) options() []tasklist.Option {
	if c.now == nil {
		return nil
	}
	return []tasklist.Option{tasklist.WithClock(c.now)}
}

// newController builds the controller for one command run. Store failures
// are logged to errOut and reported through the CLI notifier; later opts win.
func newController(cfg *config.Config, svc service.Service, errOut io.Writer, opts ...tasklist.Option) (*tasklist.Controller, error) {
	loc, err := cfg.Settings.Location()
	if err != nil {
		return nil, err
	}
	logger := logging.FromSettings(errOut, cfg.Settings.LogLevel, cfg.Settings.LogFormat, cfg.Debug)

	base := []tasklist.Option{
		tasklist.WithLocation(loc),
		tasklist.WithLogger(logger),
		tasklist.WithNotifier(output.NewNotifier(errOut)),
	}
	return tasklist.New(svc, append(base, opts...)...), nil
}

// loadFailed reports a failed list load, which the controller only logs.
func loadFailed(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	} else {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return exitcode.For(err)
}

// actionFailed reports an error returned by a controller action. Store
// errors were already surfaced by the notifier.
func actionFailed(errOut io.Writer, err error) int {
	if !service.IsStoreError(err) {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.For(err)
}
