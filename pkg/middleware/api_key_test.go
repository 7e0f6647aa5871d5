package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAPIKeyAuth_Middleware(t *testing.T) {
	auth := NewAPIKeyAuth([]string{"pk_live_first", " pk_live_second ", ""}, zap.NewNop())
	h := auth.Middleware(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{name: "no key", want: http.StatusUnauthorized},
		{name: "wrong key", header: APIKeyHeader, value: "pk_live_guess", want: http.StatusUnauthorized},
		{name: "prefix of a key", header: APIKeyHeader, value: "pk_live_", want: http.StatusUnauthorized},
		{name: "first key", header: APIKeyHeader, value: "pk_live_first", want: http.StatusOK},
		{name: "trimmed second key", header: APIKeyHeader, value: "pk_live_second", want: http.StatusOK},
		{name: "bearer token", header: "Authorization", value: "Bearer pk_live_first", want: http.StatusOK},
		{name: "lowercase bearer", header: "Authorization", value: "bearer pk_live_second", want: http.StatusOK},
		{name: "basic auth", header: "Authorization", value: "Basic cGtfbGl2ZV9maXJzdA==", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysRefusesEverything(t *testing.T) {
	auth := NewAPIKeyAuth([]string{"", "  "}, zap.NewNop())
	h := auth.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set(APIKeyHeader, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
