package auth

import (
	"net/http"

	"c6t/credentials"
)

// Session is the state of one login run. Each field is written by exactly
// one stage; the secrets are cleared as soon as they have been sent.
type Session struct {
	BaseURL string
	Profile string

	// Headers are attached to every request after CaptureXSRF.
	Headers http.Header

	Username        string
	password        string
	code            string
	SSOEnabled      bool
	LicenseActive   bool
	TwoStepRequired bool
	Superadmin      bool
	SuperadminMode  bool
	OrganizationID  string

	apiKey     string
	serviceKey string
	record     credentials.Record
}

func newSession(baseURL, profile string) *Session {
	return &Session{
		BaseURL: baseURL,
		Profile: credentials.NormalizeProfile(profile),
		Headers: make(http.Header),
	}
}

// header returns a copy so transports can never mutate session state.
func (s *Session) header() http.Header {
	return s.Headers.Clone()
}

func (s *Session) assemble() credentials.Record {
	return credentials.Record{
		Profile:        s.Profile,
		BaseURL:        s.BaseURL,
		Username:       s.Username,
		APIKey:         s.apiKey,
		ServiceKey:     s.serviceKey,
		OrganizationID: s.OrganizationID,
		Superadmin:     s.Superadmin,
	}
}
