package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// APIKeyHeader carries the shop backend's key on order intake requests
const APIKeyHeader = "X-API-Key"

// APIKeyAuth admits requests that present one of the configured keys.
// Only digests of the keys are held in memory.
type APIKeyAuth struct {
	digests [][sha256.Size]byte
	logger  *zap.Logger
}

// NewAPIKeyAuth creates the middleware. Blank keys are ignored; with no keys left
// every request is refused.
func NewAPIKeyAuth(keys []string, logger *zap.Logger) *APIKeyAuth {
	a := &APIKeyAuth{logger: logger}
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			a.digests = append(a.digests, sha256.Sum256([]byte(key)))
		}
	}
	return a
}

// presentedKey reads X-API-Key, falling back to an Authorization bearer token
func presentedKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// valid compares digests so timing does not depend on the key contents.
// Every configured key is checked.
func (a *APIKeyAuth) valid(key string) bool {
	if key == "" {
		return false
	}
	digest := sha256.Sum256([]byte(key))
	match := 0
	for i := range a.digests {
		match |= subtle.ConstantTimeCompare(digest[:], a.digests[i][:])
	}
	return match == 1
}

// Middleware rejects requests without a valid key with 401
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := presentedKey(r)
		if !a.valid(key) {
			a.logger.Warn("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Bool("key_present", key != ""),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="orders"`)
			http.Error(w, "missing or invalid API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
