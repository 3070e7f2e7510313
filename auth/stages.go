package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"c6t/prompt"
	"c6t/teamserver"
)

func (o *Orchestrator) initSession(ctx context.Context, s *Session) (Stage, error) {
	if err := o.client.InitSession(ctx, s.header()); err != nil {
		return 0, newError(KindTransport, err)
	}
	return StageCollectUsername, nil
}

func (o *Orchestrator) collectUsername(ctx context.Context, s *Session) (Stage, error) {
	username, err := o.required(ctx, "Email address", o.prompter.Input)
	if err != nil {
		return 0, err
	}
	s.Username = strings.TrimSpace(username)
	return StageCheckSSO, nil
}

func (o *Orchestrator) checkSSO(ctx context.Context, s *Session) (Stage, error) {
	enabled, message, err := o.client.LookupSSO(ctx, s.header(), s.Username)
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	s.SSOEnabled = enabled
	if s.SSOEnabled {
		return 0, newErrorf(KindSSOAccountDetected, "SSO is enabled for this account; sign in through your identity provider instead")
	}
	o.say(message)
	return StageCheckLicense, nil
}

func (o *Orchestrator) checkLicense(ctx context.Context, s *Session) (Stage, error) {
	active, status, err := o.client.LicenseActive(ctx, s.header())
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	s.LicenseActive = active
	if !s.LicenseActive {
		return 0, newErrorf(KindLicenseInactive, fmt.Sprintf("TeamServer license is not active (status %d)", status))
	}
	return StageCollectPassword, nil
}

func (o *Orchestrator) collectPassword(ctx context.Context, s *Session) (Stage, error) {
	password, err := o.required(ctx, "Password", o.prompter.Secret)
	if err != nil {
		return 0, err
	}
	s.password = password
	return StageAuthenticate, nil
}

func (o *Orchestrator) authenticate(ctx context.Context, s *Session) (Stage, error) {
	result, err := o.client.Authenticate(ctx, s.header(), s.Username, s.password)
	s.password = ""
	if err != nil {
		return 0, rejection(err)
	}
	s.TwoStepRequired = result.TwoStepRequired
	o.say(result.Message)
	return StageCaptureXSRF, nil
}

// captureXSRF copies the anti-forgery cookie into the session headers. Some
// deployments never set it, which is fine.
func (o *Orchestrator) captureXSRF(_ context.Context, s *Session) (Stage, error) {
	if token := teamserver.XSRFToken(o.client.Cookies()); token != "" {
		s.Headers.Set(teamserver.XSRFHeaderName, token)
		o.logger.Debug("xsrf token captured")
	}
	if s.TwoStepRequired {
		return StageTwoFactor, nil
	}
	return StageRoleCheck, nil
}

func (o *Orchestrator) twoFactor(ctx context.Context, s *Session) (Stage, error) {
	code, err := o.required(ctx, "Two-step verification code", o.prompter.Secret)
	if err != nil {
		return 0, err
	}
	s.code = code

	message, err := o.client.AuthorizeTwoStep(ctx, s.header(), s.code)
	s.code = ""
	if err != nil {
		return 0, rejection(err)
	}
	o.say(message)
	return StageRoleCheck, nil
}

func (o *Orchestrator) roleCheck(ctx context.Context, s *Session) (Stage, error) {
	roles, err := o.client.ProfileRoles(ctx, s.header())
	if err != nil {
		return 0, rejection(err)
	}
	o.say(roles.Message)

	s.Superadmin = roles.IsSuperadmin()
	if s.Superadmin {
		return StageSuperadmin, nil
	}
	return StageSelectOrganization, nil
}

// superadmin asks whether to switch into superadmin mode. Only y/yes/n/no
// are accepted; anything else asks again.
func (o *Orchestrator) superadmin(ctx context.Context, s *Session) (Stage, error) {
	for {
		answer, err := o.prompter.Input(ctx, "Toggle Superadmin? (y/n)")
		if err != nil {
			return 0, err
		}
		toggle, ok := prompt.ParseYesNo(answer)
		if !ok {
			o.say("Invalid input.")
			continue
		}
		if !toggle {
			o.say("Not using Superadmin.")
			return StageSelectOrganization, nil
		}
		break
	}

	if err := o.client.ToggleSuperadmin(ctx, s.header()); err != nil {
		return 0, newError(KindTransport, err)
	}
	s.SuperadminMode = true
	// The toggle rotates session cookies, the anti-forgery token included.
	if token := teamserver.XSRFToken(o.client.Cookies()); token != "" {
		s.Headers.Set(teamserver.XSRFHeaderName, token)
	}

	roles, err := o.client.SuperadminRoles(ctx, s.header())
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	o.logger.Debug("superadmin roles", "roles", strings.Join(roles, ","))

	orgs, err := o.client.SuperadminOrganizations(ctx, s.header(), s.Username)
	if err != nil {
		return 0, rejection(err)
	}
	org, ok := firstSuperadminOrganization(orgs)
	if !ok {
		return 0, newErrorf(KindNoOrganizations, "No superadmin organization found")
	}
	s.OrganizationID = org.ID
	return StageMintCredentials, nil
}

func (o *Orchestrator) selectOrganization(ctx context.Context, s *Session) (Stage, error) {
	orgs, err := o.client.Organizations(ctx, s.header())
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	if len(orgs) == 0 {
		return 0, newErrorf(KindNoOrganizations, "No organizations found")
	}

	id, err := chooseOrganization(ctx, o.prompter, orgs)
	if err != nil {
		return 0, err
	}
	s.OrganizationID = id
	return StageMintCredentials, nil
}

func (o *Orchestrator) mintCredentials(ctx context.Context, s *Session) (Stage, error) {
	apiKey, err := o.client.APIKey(ctx, s.header(), s.OrganizationID)
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	serviceKey, err := o.client.ServiceKey(ctx, s.header())
	if err != nil {
		return 0, newError(KindTransport, err)
	}
	s.apiKey = apiKey
	s.serviceKey = serviceKey
	return StagePersist, nil
}

// persist is the only stage that touches the store. The record is complete
// before Save is attempted.
func (o *Orchestrator) persist(_ context.Context, s *Session) (Stage, error) {
	record := s.assemble()
	if err := record.Validate(); err != nil {
		return 0, newError(KindPersistence, err)
	}
	if err := o.store.Save(record); err != nil {
		return 0, newError(KindPersistence, fmt.Errorf("save profile %q: %w", record.Profile, err))
	}
	s.record = record
	return StageDone, nil
}

// required re-asks until an answer with non-blank content is given. The
// answer is returned as entered.
func (o *Orchestrator) required(ctx context.Context, title string, ask func(context.Context, string) (string, error)) (string, error) {
	for {
		value, err := ask(ctx, title)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) != "" {
			return value, nil
		}
		o.say("Value must not be empty.")
	}
}

// rejection classifies failures of envelope endpoints: an explicit
// success=false (or an error status carrying a server message) is a
// rejection, anything else is a transport failure.
func rejection(err error) *Error {
	var envelopeErr *teamserver.EnvelopeError
	if errors.As(err, &envelopeErr) {
		return newError(KindAuthRejected, err)
	}
	var statusErr *teamserver.StatusError
	if errors.As(err, &statusErr) && statusErr.ServerMessage() != "" {
		return newError(KindAuthRejected, err)
	}
	return newError(KindTransport, err)
}
