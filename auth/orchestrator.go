// Package auth drives the interactive TeamServer login that turns a
// username and password into long-lived API credentials for a profile.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"c6t/credentials"
	"c6t/prompt"
	"c6t/teamserver"
)

// Saver persists the credential record produced by a successful run.
type Saver interface {
	Save(record credentials.Record) error
}

type Config struct {
	BaseURL   string
	Transport teamserver.Transport
	Prompter  prompt.Prompter
	Store     Saver
	Logger    *log.Logger
	// Out receives server messages and progress notices. Nil discards them.
	Out io.Writer
}

type Orchestrator struct {
	baseURL  string
	client   *teamserver.UIClient
	prompter prompt.Prompter
	store    Saver
	logger   *log.Logger
	out      io.Writer
}

func New(cfg Config) (*Orchestrator, error) {
	baseURL, _, err := teamserver.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Transport == nil {
		return nil, errors.New("transport is required")
	}
	if cfg.Prompter == nil {
		return nil, errors.New("prompter is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("credential store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	return &Orchestrator{
		baseURL:  baseURL,
		client:   teamserver.NewUIClient(cfg.Transport),
		prompter: cfg.Prompter,
		store:    cfg.Store,
		logger:   logger,
		out:      out,
	}, nil
}

type stageFunc func(o *Orchestrator, ctx context.Context, s *Session) (Stage, error)

var stages = map[Stage]stageFunc{
	StageInitSession:        (*Orchestrator).initSession,
	StageCollectUsername:    (*Orchestrator).collectUsername,
	StageCheckSSO:           (*Orchestrator).checkSSO,
	StageCheckLicense:       (*Orchestrator).checkLicense,
	StageCollectPassword:    (*Orchestrator).collectPassword,
	StageAuthenticate:       (*Orchestrator).authenticate,
	StageCaptureXSRF:        (*Orchestrator).captureXSRF,
	StageTwoFactor:          (*Orchestrator).twoFactor,
	StageRoleCheck:          (*Orchestrator).roleCheck,
	StageSuperadmin:         (*Orchestrator).superadmin,
	StageSelectOrganization: (*Orchestrator).selectOrganization,
	StageMintCredentials:    (*Orchestrator).mintCredentials,
	StagePersist:            (*Orchestrator).persist,
}

// Run performs one login for profile and returns the persisted record. On
// any failure it returns an *Error and nothing is written to the store.
func (o *Orchestrator) Run(ctx context.Context, profile string) (credentials.Record, error) {
	s := newSession(o.baseURL, profile)
	o.logger.Debug("login started", "url", s.BaseURL, "profile", s.Profile)

	stage := StageInitSession
	for stage != StageDone {
		if err := ctx.Err(); err != nil {
			return credentials.Record{}, classify(stage, err)
		}

		fn, ok := stages[stage]
		if !ok {
			return credentials.Record{}, classify(stage, fmt.Errorf("unknown login stage %d", stage))
		}

		next, err := fn(o, ctx, s)
		if err != nil {
			authErr := classify(stage, err)
			o.logger.Debug("login aborted", "stage", stage, "kind", authErr.Kind)
			return credentials.Record{}, authErr
		}
		if next <= stage {
			return credentials.Record{}, classify(stage, fmt.Errorf("login stage %s cannot move back to %s", stage, next))
		}

		o.logger.Debug("login stage complete", "stage", stage, "next", next)
		stage = next
	}

	return s.record, nil
}

func (o *Orchestrator) say(message string) {
	if message == "" {
		return
	}
	fmt.Fprintln(o.out, message)
}
