package auth

import (
	"context"
	"errors"
	"strings"

	"c6t/prompt"
)

// Kind classifies why a login run ended without credentials.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindAuthRejected
	KindSSOAccountDetected
	KindLicenseInactive
	KindNoOrganizations
	KindPersistence
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindAuthRejected:
		return "authentication rejected"
	case KindSSOAccountDetected:
		return "SSO account detected"
	case KindLicenseInactive:
		return "license inactive"
	case KindNoOrganizations:
		return "no organizations"
	case KindPersistence:
		return "persistence error"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the terminal outcome of an aborted login run. Message holds the
// most specific text available, preferring the server's own message.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return 0, false
}

type serverMessenger interface {
	ServerMessage() string
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: messageFor(err), Err: err}
}

func newErrorf(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func messageFor(err error) string {
	if err == nil {
		return ""
	}
	var withMessage serverMessenger
	if errors.As(err, &withMessage) {
		if msg := strings.TrimSpace(withMessage.ServerMessage()); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// classify turns whatever a stage returned into an *Error tagged with the
// stage. Interrupted prompts and cancelled contexts always map to
// KindCancelled, whatever the stage was doing at the time.
func classify(stage Stage, err error) *Error {
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCancelled, Stage: stage, Message: "login cancelled", Err: err}
	}

	var authErr *Error
	if !errors.As(err, &authErr) {
		authErr = newError(KindTransport, err)
	}
	if authErr.Stage == 0 {
		authErr.Stage = stage
	}
	return authErr
}
