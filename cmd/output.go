package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"c6t/auth"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "c6t"})

	successColor = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgYellow)
	failureColor = color.New(color.FgRed)
)

func setupLogger(level string, debug bool) error {
	if debug {
		logger.SetLevel(log.DebugLevel)
		return nil
	}
	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(parsed)
	return nil
}

func printSuccess(format string, args ...any) {
	successColor.Fprintf(stdout, format+"\n", args...)
}

func printNotice(format string, args ...any) {
	noticeColor.Fprintf(stdout, format+"\n", args...)
}

func printError(err error) {
	if kind, ok := auth.KindOf(err); ok && kind == auth.KindSSOAccountDetected {
		noticeColor.Fprintln(stderr, err.Error())
		return
	}
	failureColor.Fprintln(stderr, "Error:", err.Error())
}
