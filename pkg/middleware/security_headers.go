package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// SecurityHeaders sets browser security headers on the checkout pages
type SecurityHeaders struct {
	isDevelopment bool
	csp           string
}

// NewSecurityHeaders allows forms to post only to this service and to the
// processor origins derived from formTargets
func NewSecurityHeaders(isDevelopment bool, formTargets ...string) *SecurityHeaders {
	formAction := []string{"'self'"}
	for _, target := range formTargets {
		if u, err := url.Parse(target); err == nil && u.Scheme != "" && u.Host != "" {
			formAction = append(formAction, u.Scheme+"://"+u.Host)
		}
	}

	// The redirect page submits itself from an inline onload handler
	csp := "default-src 'none'; " +
		"script-src 'unsafe-inline'; " +
		"style-src 'unsafe-inline'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'none'; " +
		"form-action " + strings.Join(formAction, " ")

	return &SecurityHeaders{
		isDevelopment: isDevelopment,
		csp:           csp,
	}
}

// Middleware wraps an HTTP handler with security headers
func (sh *SecurityHeaders) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", sh.csp)
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")

		// Only in production to avoid pinning HTTPS on localhost
		if !sh.isDevelopment {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
