package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLineInputTrimsAnswer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewLine(strings.NewReader("  alice@example.com  \n"), &out)

	got, err := p.Input(context.Background(), "Email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice@example.com" {
		t.Fatalf("unexpected answer: %q", got)
	}
	if out.String() != "Email: " {
		t.Fatalf("unexpected prompt output: %q", out.String())
	}
}

func TestLineInputAcceptsFinalLineWithoutNewline(t *testing.T) {
	t.Parallel()

	got, err := NewLine(strings.NewReader("123456"), nil).Secret(context.Background(), "Code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "123456" {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestLineInputEOFIsAborted(t *testing.T) {
	t.Parallel()

	_, err := NewLine(strings.NewReader(""), nil).Input(context.Background(), "Email")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestLineInputCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLine(strings.NewReader("alice\n"), nil).Input(ctx, "Email")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLineSelectRepromptsOnInvalidChoice(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewLine(strings.NewReader("0\nabc\n2\n"), &out)
	options := []Option{
		{Label: "Acme", Value: "org-1"},
		{Label: "Globex", Value: "org-2"},
	}

	got, err := p.Select(context.Background(), "Select organization:", options)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "org-2" {
		t.Fatalf("unexpected selection: %q", got)
	}
	if count := strings.Count(out.String(), "Invalid selection."); count != 2 {
		t.Fatalf("expected 2 invalid selection notices, got %d in %q", count, out.String())
	}
	if !strings.Contains(out.String(), "  1) Acme\n  2) Globex\n") {
		t.Fatalf("options not listed: %q", out.String())
	}
}

func TestLineSelectWithoutOptions(t *testing.T) {
	t.Parallel()

	if _, err := NewLine(strings.NewReader("1\n"), nil).Select(context.Background(), "Pick", nil); err == nil {
		t.Fatalf("expected error for empty options")
	}
}

func TestLineConfirm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewLine(strings.NewReader("maybe\nYES\n"), &out)

	got, err := p.Confirm(context.Background(), "Superadmin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected confirmation")
	}
	if !strings.Contains(out.String(), "Please answer y or n.") {
		t.Fatalf("missing re-prompt: %q", out.String())
	}
}

func TestParseYesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantValue bool
		wantOK    bool
	}{
		{in: "y", wantValue: true, wantOK: true},
		{in: " Yes ", wantValue: true, wantOK: true},
		{in: "N", wantValue: false, wantOK: true},
		{in: "no", wantValue: false, wantOK: true},
		{in: "", wantOK: false},
		{in: "sure", wantOK: false},
	}

	for _, tc := range tests {
		value, ok := ParseYesNo(tc.in)
		if value != tc.wantValue || ok != tc.wantOK {
			t.Fatalf("ParseYesNo(%q) = (%v, %v), want (%v, %v)", tc.in, value, ok, tc.wantValue, tc.wantOK)
		}
	}
}

func TestLineSecretKeepsSurroundingSpaces(t *testing.T) {
	t.Parallel()

	got, err := NewLine(strings.NewReader("  pass word  \r\nnext\n"), nil).Secret(context.Background(), "Password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  pass word  " {
		t.Fatalf("unexpected secret: %q", got)
	}
}

func TestLineSecretEOFIsAborted(t *testing.T) {
	t.Parallel()

	_, err := NewLine(strings.NewReader(""), nil).Secret(context.Background(), "Password")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestLineInputCancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	reader, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	line := NewLine(reader, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := line.Input(ctx, "Email")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	go func() { _, _ = writer.Write([]byte("alice@example.com\n")) }()

	got, err := line.Input(context.Background(), "Email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice@example.com" {
		t.Fatalf("expected the pending line to be delivered, got %q", got)
	}
}
