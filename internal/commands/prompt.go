package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"countdo/internal/tasklist"
)

// linePrompter asks confirmations on a terminal. Task values come from
// flags, so it never shows a form.
type linePrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newLinePrompter(in io.Reader, out io.Writer, assumeYes bool) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// PromptTask implements tasklist.Prompter.
func (p *linePrompter) PromptTask(ctx context.Context, title string, defaults tasklist.Submitted) (tasklist.FormResult, error) {
	return tasklist.Cancelled{}, nil
}

// Confirm implements tasklist.Prompter. Anything but y or yes declines.
func (p *linePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
