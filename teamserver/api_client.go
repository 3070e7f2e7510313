package teamserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	agentConfigPathPattern = "/api/ng/%s/agents/external/default/%s"
	rulesPathPattern       = "/api/ng/%s/rules"
	rulePathPattern        = "/api/ng/%s/rules/%s"
)

// APIClient calls the TeamServer REST API with the long-lived credentials
// minted by login (or entered through configure).
type APIClient interface {
	AgentConfig(ctx context.Context, language string) ([]byte, error)
	Rules(ctx context.Context) ([]Rule, error)
	UpdateRuleReferences(ctx context.Context, ruleName string, references []string) error
}

// Rule is one Assess policy rule of the organization.
type Rule struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	CWE       string   `json:"cwe"`
	Languages []string `json:"languages"`
}

// CWEID returns the numeric part of the rule's CWE link,
// e.g. "79" for "https://cwe.mitre.org/data/definitions/79.html".
func (r Rule) CWEID() string {
	value := strings.TrimSpace(r.CWE)
	if i := strings.LastIndex(value, "/"); i >= 0 {
		value = value[i+1:]
	}
	return strings.TrimSuffix(value, ".html")
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type APIClientConfig struct {
	BaseURL        string
	Username       string
	APIKey         string
	ServiceKey     string
	OrganizationID string
	UserAgent      string
	Timeout        time.Duration
	HTTPClient     httpDoer
}

type HTTPAPIClient struct {
	baseURL        string
	apiKey         string
	authorization  string
	organizationID string
	userAgent      string
	httpClient     httpDoer
}

func NewAPIClient(cfg APIClientConfig) (*HTTPAPIClient, error) {
	baseURL, _, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("API key is required")
	}
	if strings.TrimSpace(cfg.OrganizationID) == "" {
		return nil, errors.New("organization id is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: requestTimeout(cfg.Timeout)}
	}

	return &HTTPAPIClient{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		authorization:  AuthorizationHeader(cfg.Username, cfg.ServiceKey),
		organizationID: strings.TrimSpace(cfg.OrganizationID),
		userAgent:      strings.TrimSpace(cfg.UserAgent),
		httpClient:     doer,
	}, nil
}

// AuthorizationHeader encodes username:serviceKey the way TeamServer expects
// it: base64 without a scheme prefix.
func AuthorizationHeader(username, serviceKey string) string {
	raw := strings.TrimSpace(username) + ":" + strings.TrimSpace(serviceKey)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// AgentConfig fetches the default external agent configuration (YAML) for the
// given agent language, e.g. JAVA or NODE.
func (c *HTTPAPIClient) AgentConfig(ctx context.Context, language string) ([]byte, error) {
	language = strings.ToUpper(strings.TrimSpace(language))
	if language == "" {
		return nil, errors.New("agent language is required")
	}

	endpointPath := fmt.Sprintf(agentConfigPathPattern, url.PathEscape(c.organizationID), url.PathEscape(language))
	return c.do(ctx, http.MethodPost, endpointPath, nil, nil)
}

// Rules lists the organization's Assess policy rules.
func (c *HTTPAPIClient) Rules(ctx context.Context) ([]Rule, error) {
	endpointPath := fmt.Sprintf(rulesPathPattern, url.PathEscape(c.organizationID))
	body, err := c.do(ctx, http.MethodGet, endpointPath, url.Values{"expand": {"skip_links"}}, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Rules []Rule `json:"rules"`
	}
	if err := (&Response{Body: body}).DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return payload.Rules, nil
}

// UpdateRuleReferences replaces the reference list of one rule. An empty
// list restores the default references.
func (c *HTTPAPIClient) UpdateRuleReferences(ctx context.Context, ruleName string, references []string) error {
	ruleName = strings.TrimSpace(ruleName)
	if ruleName == "" {
		return errors.New("rule name is required")
	}
	if references == nil {
		references = []string{}
	}

	endpointPath := fmt.Sprintf(rulePathPattern, url.PathEscape(c.organizationID), url.PathEscape(ruleName))
	body, err := c.do(ctx, http.MethodPost, endpointPath, nil, map[string][]string{"references": references})
	if err != nil {
		return err
	}

	var envelope Envelope
	if err := (&Response{Body: body}).DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("decode rule update: %w", err)
	}
	if !envelope.Success {
		return &EnvelopeError{Method: http.MethodPost, Path: endpointPath, Messages: envelope.Messages}
	}
	return nil
}

func (c *HTTPAPIClient) do(ctx context.Context, method, endpointPath string, query url.Values, payload any) ([]byte, error) {
	target := c.baseURL + endpointPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request %s %s: %w", method, endpointPath, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("Authorization", c.authorization)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, endpointPath, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(method, endpointPath, &Response{StatusCode: resp.StatusCode, Body: body})
	}
	return body, nil
}

var _ APIClient = (*HTTPAPIClient)(nil)

// requestTimeout is the per-request budget used when the caller passes no
// explicit timeout.
func requestTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}
