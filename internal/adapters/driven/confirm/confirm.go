// Package confirm implements driven.Confirmer for terminals and scripts.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

var (
	_ driven.Confirmer = (*Terminal)(nil)
	_ driven.Confirmer = Auto{}
)

// Terminal asks on an interactive terminal and reads a y/n answer.
// When input is not a terminal it refuses with
// domain.ErrConfirmationRequired instead of guessing.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

// NewTerminal returns a confirmer reading from in and prompting on out.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{
		in:  in,
		out: out,
		interactive: func() bool {
			return term.IsTerminal(int(in.Fd()))
		},
	}
}

// Confirm prints prompt and waits for an answer. Only "y" and "yes"
// agree; anything else, including an empty line, declines.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if t.interactive != nil && !t.interactive() {
		return false, fmt.Errorf("%w: %s (stdin is not a terminal, pass --yes)", domain.ErrConfirmationRequired, prompt)
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)

	type answer struct {
		line string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(t.in).ReadString('\n')
		done <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return false, ctx.Err()
	case a := <-done:
		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return false, nil
			}
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// Auto answers every prompt the same way, for --yes and tests.
type Auto struct {
	Answer bool
}

// Confirm returns the fixed answer.
func (a Auto) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.Answer, nil
}
