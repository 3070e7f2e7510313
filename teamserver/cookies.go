package teamserver

import (
	"net/http"
	"strings"
)

const (
	XSRFCookieName = "XSRF-TOKEN"
	XSRFHeaderName = "X-XSRF-TOKEN"
)

// CookieValue returns the value of the last non-empty cookie with the given
// name, or "" when none is present.
func CookieValue(cookies []*http.Cookie, name string) string {
	value := ""
	for _, cookie := range cookies {
		if cookie == nil || cookie.Name != name {
			continue
		}
		if v := strings.TrimSpace(cookie.Value); v != "" {
			value = v
		}
	}
	return value
}

// XSRFToken returns the anti-forgery token from the cookie set, if any.
func XSRFToken(cookies []*http.Cookie) string {
	return CookieValue(cookies, XSRFCookieName)
}
