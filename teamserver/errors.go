package teamserver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the response wrapper used by most /api/ng endpoints.
type Envelope struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
}

// Message returns the first non-empty server message.
func (e Envelope) Message() string {
	return firstMessage(e.Messages)
}

// StatusError is returned when an endpoint answers with a status code its
// contract does not allow.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func newStatusError(method, path string, resp *Response) *StatusError {
	body := string(resp.Body)
	if len(body) > 4096 {
		body = body[:4096]
	}
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(body),
	}
}

func (e *StatusError) Error() string {
	if msg := e.ServerMessage(); msg != "" {
		return fmt.Sprintf("request %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("request %s %s failed with status %d", e.Method, e.Path, e.StatusCode)
}

// ServerMessage extracts envelope messages from the error body, if any.
func (e *StatusError) ServerMessage() string {
	var envelope Envelope
	if err := json.Unmarshal([]byte(e.Body), &envelope); err != nil {
		return ""
	}
	return envelope.Message()
}

// EnvelopeError is returned when the server answered 200 but reported
// success=false in the envelope.
type EnvelopeError struct {
	Method   string
	Path     string
	Messages []string
}

func (e *EnvelopeError) Error() string {
	if msg := e.ServerMessage(); msg != "" {
		return msg
	}
	return fmt.Sprintf("request %s %s was rejected by the server", e.Method, e.Path)
}

func (e *EnvelopeError) ServerMessage() string {
	return firstMessage(e.Messages)
}

func firstMessage(messages []string) string {
	for _, msg := range messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return ""
}
