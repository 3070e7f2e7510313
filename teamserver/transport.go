package teamserver

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
)

// Request describes one call against the TeamServer base URL. Header carries
// the caller's extra headers (for example the XSRF token) for this call only.
type Request struct {
	Method          string
	Path            string
	Query           url.Values
	Header          http.Header
	Form            url.Values
	JSON            any
	FollowRedirects bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

// DecodeJSON decodes the response body into out.
func (r *Response) DecodeJSON(out any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Transport is the HTTP session used by the login workflow. Implementations
// own the cookie jar; headers are supplied per request.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
	Cookies() []*http.Cookie
}

type TransportConfig struct {
	BaseURL            string
	UserAgent          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// HTTPTransport is a Transport backed by net/http with a session cookie jar
// shared between a redirect-following and a non-following client.
type HTTPTransport struct {
	baseURL   string
	parsedURL *url.URL
	userAgent string
	jar       http.CookieJar
	follow    *http.Client
	noFollow  *http.Client
}

func NewTransport(cfg TransportConfig) (*HTTPTransport, error) {
	baseURL, parsed, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := requestTimeout(cfg.Timeout)

	var roundTripper http.RoundTripper
	if cfg.InsecureSkipVerify {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed on-prem TeamServers
		roundTripper = base
	}

	return &HTTPTransport{
		baseURL:   baseURL,
		parsedURL: parsed,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		jar:       jar,
		follow: &http.Client{
			Transport: roundTripper,
			Jar:       jar,
			Timeout:   timeout,
		},
		noFollow: &http.Client{
			Transport: roundTripper,
			Jar:       jar,
			Timeout:   timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// NormalizeBaseURL trims whitespace and trailing slashes and requires an
// absolute http(s) URL.
func NormalizeBaseURL(raw string) (string, *url.URL, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", nil, errors.New("base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", nil, fmt.Errorf("invalid base URL %q", raw)
	}
	return baseURL, parsed, nil
}

func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

func (t *HTTPTransport) Cookies() []*http.Cookie {
	return t.jar.Cookies(t.parsedURL)
}

func (t *HTTPTransport) Do(ctx context.Context, r Request) (*Response, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.JSON != nil:
		payload, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	endpoint := t.baseURL + r.Path
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", r.Method, r.Path, err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, values := range r.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	client := t.noFollow
	if r.FollowRedirects {
		client = t.follow
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", r.Method, r.Path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Cookies:    resp.Cookies(),
		Body:       payload,
	}, nil
}
