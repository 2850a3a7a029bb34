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
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	clock
	format string
	output string
}

// SetOptions sets the format and output flags (for testing).
func (c *ExportCmd) SetOptions(format, output string) {
	c.format = format
	c.output = output
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write tasks as json, yaml, csv or pdf" }
func (c *ExportCmd) Usage() string {
	return "countdo export [--format json|yaml|csv|pdf] [-o <file>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "")
	fs.StringVar(&c.format, "f", "", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	format := c.format
	if format == "" {
		format = taskfile.FormatFromPath(c.output)
	}
	if format == taskfile.FormatPDF && c.output == "" {
		fmt.Fprintln(errOut, "error: pdf export needs --output")
		return exitcode.UserError
	}

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

	if c.output == "" {
		if err := taskfile.Encode(out, format, views); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	f, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := taskfile.Encode(f, format, views); err != nil {
		f.Close()
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d tasks to %s\n", len(views), c.output)
	}
	return exitcode.Success
}
