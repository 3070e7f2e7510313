package cmd

import (
	"context"
	"errors"

	"c6t/auth"
	"c6t/credentials"
	"c6t/prompt"
)

// Exit codes. Every login outcome other than success is non-zero.
const (
	exitSuccess         = 0
	exitGeneralError    = 1
	exitTransportError  = 3
	exitAuthRejected    = 4
	exitSSOAccount      = 5
	exitLicenseInactive = 6
	exitNoOrganizations = 7
	exitPersistence     = 8
	exitCancelled       = 130
)

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}

	if kind, ok := auth.KindOf(err); ok {
		switch kind {
		case auth.KindTransport:
			return exitTransportError
		case auth.KindAuthRejected:
			return exitAuthRejected
		case auth.KindSSOAccountDetected:
			return exitSSOAccount
		case auth.KindLicenseInactive:
			return exitLicenseInactive
		case auth.KindNoOrganizations:
			return exitNoOrganizations
		case auth.KindPersistence:
			return exitPersistence
		case auth.KindCancelled:
			return exitCancelled
		}
	}

	switch {
	case errors.Is(err, prompt.ErrAborted), errors.Is(err, context.Canceled):
		return exitCancelled
	case errors.Is(err, credentials.ErrLocked):
		return exitPersistence
	}
	return exitGeneralError
}
