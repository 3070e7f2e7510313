package teamserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	PathAgentFeature          = "/api/ng/agent/feature"
	PathSAMLEmail             = "/api/public/ng/saml/email/"
	PathLicenseActive         = "/api/ng/contrast/license/active"
	PathAuthenticate          = "/authenticate.html"
	PathTwoStepAuthorize      = "/api/ng/tsv/authorize"
	PathProfileRoles          = "/api/ng/profile/roles"
	PathSuperadminToggle      = "/api/ng/profile/toggle"
	PathSuperadminRoles       = "/api/ng/superadmin/users/roles"
	PathProfileOrganizations  = "/api/ng/profile/organizations"
	PathProfileServiceKey     = "/api/ng/profile/servicekey"
	RoleSuperadmin            = "SUPERADMIN"
	superadminOrgsPathPattern = "/api/ng/superadmin/users/%s/organizations"
	apiKeyPathPattern         = "/api/ng/%s/users/keys/apikey"
)

var ErrMissingField = errors.New("response is missing a required field")

// Organization is one entry of the caller's organization list.
type Organization struct {
	ID           string `json:"organization_uuid"`
	Name         string `json:"name"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

type LoginResult struct {
	Message         string
	TwoStepRequired bool
}

type Roles struct {
	Message   string
	AdminRole string
}

func (r Roles) IsSuperadmin() bool {
	return r.AdminRole == RoleSuperadmin
}

// UIClient wraps the browser-session endpoints used during interactive
// login. Every method takes the session's extra headers explicitly.
type UIClient struct {
	transport Transport
}

func NewUIClient(transport Transport) *UIClient {
	return &UIClient{transport: transport}
}

// Cookies exposes the session cookie jar for XSRF capture.
func (c *UIClient) Cookies() []*http.Cookie {
	return c.transport.Cookies()
}

// InitSession obtains the session cookie. The server only sets it on the
// redirect response, so 302 is the sole success status.
func (c *UIClient) InitSession(ctx context.Context, header http.Header) error {
	resp, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathAgentFeature, Header: header})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusFound {
		return newStatusError(http.MethodGet, PathAgentFeature, resp)
	}
	return nil
}

// LookupSSO reports whether the email is mapped to an SSO identity provider.
// 200 means SSO is configured, 404 means it is not.
func (c *UIClient) LookupSSO(ctx context.Context, header http.Header, email string) (bool, string, error) {
	path := PathSAMLEmail + url.PathEscape(strings.TrimSpace(email))
	resp, err := c.call(ctx, Request{Method: http.MethodGet, Path: path, Header: header, FollowRedirects: true})
	if err != nil {
		return false, "", err
	}

	var envelope Envelope
	_ = resp.DecodeJSON(&envelope)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, envelope.Message(), nil
	case http.StatusNotFound:
		return false, envelope.Message(), nil
	default:
		return false, "", newStatusError(http.MethodGet, PathSAMLEmail+"{email}", resp)
	}
}

// LicenseActive reports whether the TeamServer license check answers 200.
func (c *UIClient) LicenseActive(ctx context.Context, header http.Header) (bool, int, error) {
	resp, err := c.call(ctx, Request{Method: http.MethodHead, Path: PathLicenseActive, Header: header, FollowRedirects: true})
	if err != nil {
		return false, 0, err
	}
	return resp.StatusCode == http.StatusOK, resp.StatusCode, nil
}

func (c *UIClient) Authenticate(ctx context.Context, header http.Header, username, password string) (LoginResult, error) {
	form := url.Values{}
	form.Set("ui", "false")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("sso", "false")

	var out struct {
		Envelope
		ToggleEnabled bool `json:"toggle_enabled"`
	}
	if err := c.envelopeCall(ctx, Request{Method: http.MethodPost, Path: PathAuthenticate, Header: header, Form: form}, &out, &out.Envelope); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Message: out.Message(), TwoStepRequired: out.ToggleEnabled}, nil
}

// AuthorizeTwoStep submits a two-step verification code.
func (c *UIClient) AuthorizeTwoStep(ctx context.Context, header http.Header, code string) (string, error) {
	body := map[string]string{"code": strings.TrimSpace(code)}

	var out Envelope
	if err := c.envelopeCall(ctx, Request{Method: http.MethodPost, Path: PathTwoStepAuthorize, Header: header, JSON: body}, &out, &out); err != nil {
		return "", err
	}
	return out.Message(), nil
}

func (c *UIClient) ProfileRoles(ctx context.Context, header http.Header) (Roles, error) {
	var out struct {
		Envelope
		AdminRole string `json:"adminRole"`
	}
	if err := c.envelopeCall(ctx, Request{Method: http.MethodGet, Path: PathProfileRoles, Header: header, FollowRedirects: true}, &out, &out.Envelope); err != nil {
		return Roles{}, err
	}
	return Roles{Message: out.Message(), AdminRole: out.AdminRole}, nil
}

// ToggleSuperadmin switches the session into superadmin mode. The server
// answers by rotating session cookies.
func (c *UIClient) ToggleSuperadmin(ctx context.Context, header http.Header) error {
	resp, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathSuperadminToggle, Header: header, FollowRedirects: true})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return newStatusError(http.MethodGet, PathSuperadminToggle, resp)
	}
	return nil
}

func (c *UIClient) SuperadminRoles(ctx context.Context, header http.Header) ([]string, error) {
	var out struct {
		Roles []string `json:"roles"`
	}
	if err := c.jsonCall(ctx, Request{Method: http.MethodGet, Path: PathSuperadminRoles, Header: header, FollowRedirects: true}, &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

func (c *UIClient) SuperadminOrganizations(ctx context.Context, header http.Header, username string) ([]Organization, error) {
	path := fmt.Sprintf(superadminOrgsPathPattern, url.PathEscape(strings.TrimSpace(username)))
	query := url.Values{}
	query.Set("includeDefaultOrgs", "true")

	var out struct {
		Envelope
		Organizations []Organization `json:"organizations"`
	}
	if err := c.envelopeCall(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Header: header, FollowRedirects: true}, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

// Organizations lists the caller's organizations. An empty result is not an
// error here; callers decide how to treat it.
func (c *UIClient) Organizations(ctx context.Context, header http.Header) ([]Organization, error) {
	var out struct {
		Count         int            `json:"count"`
		Organizations []Organization `json:"organizations"`
	}
	if err := c.jsonCall(ctx, Request{Method: http.MethodGet, Path: PathProfileOrganizations, Header: header, FollowRedirects: true}, &out); err != nil {
		return nil, err
	}
	if out.Count <= 0 {
		return nil, nil
	}
	return out.Organizations, nil
}

func (c *UIClient) APIKey(ctx context.Context, header http.Header, organizationID string) (string, error) {
	path := fmt.Sprintf(apiKeyPathPattern, url.PathEscape(strings.TrimSpace(organizationID)))

	var out struct {
		APIKey string `json:"api_key"`
	}
	if err := c.jsonCall(ctx, Request{Method: http.MethodGet, Path: path, Header: header, FollowRedirects: true}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.APIKey) == "" {
		return "", fmt.Errorf("GET %s: %w: api_key", path, ErrMissingField)
	}
	return out.APIKey, nil
}

func (c *UIClient) ServiceKey(ctx context.Context, header http.Header) (string, error) {
	var out struct {
		ServiceKey string `json:"service_key"`
	}
	if err := c.jsonCall(ctx, Request{Method: http.MethodGet, Path: PathProfileServiceKey, Header: header, FollowRedirects: true}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ServiceKey) == "" {
		return "", fmt.Errorf("GET %s: %w: service_key", PathProfileServiceKey, ErrMissingField)
	}
	return out.ServiceKey, nil
}

func (c *UIClient) call(ctx context.Context, req Request) (*Response, error) {
	if c.transport == nil {
		return nil, errors.New("transport is required")
	}
	return c.transport.Do(ctx, req)
}

// jsonCall requires a 200 response and decodes its body into out.
func (c *UIClient) jsonCall(ctx context.Context, req Request, out any) error {
	resp, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return newStatusError(req.Method, req.Path, resp)
	}
	if err := resp.DecodeJSON(out); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// envelopeCall is jsonCall plus the success=true requirement.
func (c *UIClient) envelopeCall(ctx context.Context, req Request, out any, envelope *Envelope) error {
	if err := c.jsonCall(ctx, req, out); err != nil {
		return err
	}
	if !envelope.Success {
		return &EnvelopeError{Method: req.Method, Path: req.Path, Messages: envelope.Messages}
	}
	return nil
}
