// Package scw links TeamServer Assess rules to Secure Code Warrior training
// videos and exercises.
package scw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://integration-api.securecodewarrior.com/api/v1/trial"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Training is what Secure Code Warrior knows about one CWE.
type Training struct {
	Videos []string `json:"videos"`
}

type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Secure Code Warrior URL %q", baseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// TrainingURL is the exercise lookup URL for cwe. Appending a language key
// and redirect=true turns it into a link users can open.
func (c *Client) TrainingURL(cwe string) string {
	query := url.Values{}
	query.Set("Id", "contrast")
	query.Set("MappingList", "cwe")
	query.Set("MappingKey", strings.TrimSpace(cwe))
	return c.baseURL + "?" + query.Encode()
}

func (c *Client) Training(ctx context.Context, cwe string) (Training, error) {
	target := c.TrainingURL(cwe)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Training{}, fmt.Errorf("create training request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Training{}, fmt.Errorf("request training for cwe %s: %w", cwe, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Training{}, fmt.Errorf("read training for cwe %s: %w", cwe, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Training{}, fmt.Errorf("no data received from Secure Code Warrior for cwe %s: status %d", cwe, resp.StatusCode)
	}

	var training Training
	if len(strings.TrimSpace(string(body))) == 0 {
		return training, nil
	}
	if err := json.Unmarshal(body, &training); err != nil {
		return Training{}, fmt.Errorf("decode training for cwe %s: %w", cwe, err)
	}
	return training, nil
}
