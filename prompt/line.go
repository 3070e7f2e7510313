package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Line prompts on out and reads newline-terminated answers from in. A Line
// is used by one goroutine at a time.
type Line struct {
	in      io.Reader
	reader  *bufio.Reader
	out     io.Writer
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewLine(in io.Reader, out io.Writer) *Line {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Line{in: in, reader: bufio.NewReader(in), out: out}
}

func (l *Line) Input(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(l.out, "%s: ", strings.TrimSpace(title))
	return l.readLine(ctx, title)
}

// Secret disables echo when in is a terminal; otherwise the value is read as
// a plain line. Surrounding spaces are part of the secret and kept.
func (l *Line) Secret(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(l.out, "%s: ", strings.TrimSpace(title))

	if file, ok := l.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		value, err := readPassword(ctx, int(file.Fd()))
		fmt.Fprintln(l.out)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSpace(title)), err)
		}
		return string(value), nil
	}
	return l.readSecret(ctx, title)
}

func (l *Line) Confirm(ctx context.Context, title string) (bool, error) {
	for {
		answer, err := l.Input(ctx, strings.TrimSpace(title)+" [y/n]")
		if err != nil {
			return false, err
		}
		if value, ok := ParseYesNo(answer); ok {
			return value, nil
		}
		fmt.Fprintln(l.out, "Please answer y or n.")
	}
}

func (l *Line) Select(ctx context.Context, title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options available for %q", title)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprintln(l.out, title)
		for i, option := range options {
			fmt.Fprintf(l.out, "  %d) %s\n", i+1, option.Label)
		}
		fmt.Fprintf(l.out, "Choose [1-%d]: ", len(options))

		input, err := l.readLine(ctx, "selection")
		if err != nil {
			return "", err
		}
		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(options) {
			fmt.Fprintln(l.out, "Invalid selection. Please enter a valid number.")
			continue
		}
		return options[choice-1].Value, nil
	}
}

// readLine returns the trimmed line. A final line without a newline is
// accepted; input that ends before any text is ErrAborted.
func (l *Line) readLine(ctx context.Context, label string) (string, error) {
	line, err := l.read(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(line) != "" {
				return strings.TrimSpace(line), nil
			}
			return "", ErrAborted
		}
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSpace(label)), err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret is readLine without trimming; only the line terminator is
// removed.
func (l *Line) readSecret(ctx context.Context, label string) (string, error) {
	line, err := l.read(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSpace(label)), err)
	}
	if err != nil && line == "" {
		return "", ErrAborted
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// read waits for the next line or for ctx to end. A read abandoned on
// cancellation is handed to the next call, so the reader never has two
// readers at once.
func (l *Line) read(ctx context.Context) (string, error) {
	if l.pending == nil {
		pending := make(chan lineResult, 1)
		go func() {
			line, err := l.reader.ReadString('\n')
			pending <- lineResult{line: line, err: err}
		}()
		l.pending = pending
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-l.pending:
		l.pending = nil
		return result.line, result.err
	}
}

// readPassword reads without echo. When ctx ends first the terminal state is
// restored and the blocked read is left behind.
func readPassword(ctx context.Context, fd int) ([]byte, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}

	type passwordResult struct {
		value []byte
		err   error
	}
	done := make(chan passwordResult, 1)
	go func() {
		value, err := term.ReadPassword(fd)
		done <- passwordResult{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		return nil, ctx.Err()
	case result := <-done:
		return result.value, result.err
	}
}

// ParseYesNo accepts y, yes, n and no in any case.
func ParseYesNo(answer string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
