package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Terminal renders each prompt as a single-field huh form.
type Terminal struct{}

func NewTerminal() *Terminal {
	return &Terminal{}
}

func (t *Terminal) Input(ctx context.Context, title string) (string, error) {
	var value string
	field := huh.NewInput().Title(title).Value(&value)
	if err := run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (t *Terminal) Secret(ctx context.Context, title string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if err := run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (t *Terminal) Confirm(ctx context.Context, title string) (bool, error) {
	var value bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := run(ctx, field); err != nil {
		return false, err
	}
	return value, nil
}

func (t *Terminal) Select(ctx context.Context, title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options available for %q", title)
	}

	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option.Label, option.Value))
	}

	var choice string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Value(&choice)
	if err := run(ctx, field); err != nil {
		return "", err
	}
	return choice, nil
}

func run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return ErrAborted
	}
	return fmt.Errorf("prompt failed: %w", err)
}
