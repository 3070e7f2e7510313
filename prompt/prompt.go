// Package prompt collects interactive input for the login and configure
// workflows. Terminal renders huh forms; Line is the plain line-based
// fallback used when stdin is not a TTY (pipes, CI, tests).
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts a prompt or input ends.
var ErrAborted = errors.New("prompt aborted")

// Option is one entry of a single-choice selection. Label is shown to the
// user, Value is returned.
type Option struct {
	Label string
	Value string
}

type Prompter interface {
	Input(ctx context.Context, title string) (string, error)
	// Secret reads a value without echoing it.
	Secret(ctx context.Context, title string) (string, error)
	Confirm(ctx context.Context, title string) (bool, error)
	Select(ctx context.Context, title string, options []Option) (string, error)
}

// New returns a Terminal prompter when in is an interactive terminal and a
// Line prompter otherwise.
func New(in *os.File, out io.Writer) Prompter {
	if in == nil {
		return NewLine(nil, out)
	}
	if term.IsTerminal(int(in.Fd())) {
		return NewTerminal()
	}
	return NewLine(in, out)
}
