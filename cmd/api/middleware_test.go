package main

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tortillometro/internal/ratelimiter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicAuthHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestHealthCheck_BasicAuth(t *testing.T) {
	app := newTestApplication(t, newMemStore())
	app.config.auth.basic = basicConfig{user: "admin", pass: "secret"}
	h := app.mount()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bearer instead of basic", "Bearer abc", http.StatusUnauthorized},
		{"not base64", "Basic !!!", http.StatusUnauthorized},
		{"wrong password", basicAuthHeader("admin", "nope"), http.StatusUnauthorized},
		{"valid", basicAuthHeader("admin", "secret"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				got := decode[healthResponse](t, rr)
				assert.Equal(t, "ok", got.Status)
				assert.Equal(t, "test", got.Env)
				assert.Equal(t, version, got.Version)
			} else {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestBasicAuth_UnconfiguredRejectsEverything(t *testing.T) {
	h := newTestApplication(t, newMemStore()).mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Authorization", basicAuthHeader("", ""))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, newMemStore())
	app.config.rateLimiter = ratelimiter.Config{RequestsPerTimeFrame: 2, TimeFrame: time.Hour, Enabled: true}
	rl := ratelimiter.NewFixedWindowLimiter(2, time.Hour)
	defer rl.Stop()
	app.rateLimiter = rl
	h := app.mount()

	assert.Equal(t, http.StatusOK, executeRequest(t, h, http.MethodGet, "/entries", nil).Code)
	assert.Equal(t, http.StatusOK, executeRequest(t, h, http.MethodGet, "/entries", nil).Code)

	rr := executeRequest(t, h, http.MethodGet, "/entries", nil)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, time.Hour.String(), rr.Header().Get("Retry-After"))
}

func TestRateLimiterMiddleware_Disabled(t *testing.T) {
	app := newTestApplication(t, newMemStore())
	rl := ratelimiter.NewFixedWindowLimiter(1, time.Hour)
	defer rl.Stop()
	app.rateLimiter = rl
	h := app.mount()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, executeRequest(t, h, http.MethodGet, "/entries", nil).Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:5555"
	assert.Equal(t, "192.168.1.7", clientIP(req))

	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", clientIP(req))
}

func TestMount_ServesClientAndDocs(t *testing.T) {
	h := newTestApplication(t, newMemStore()).mount()

	rr := executeRequest(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tortillometro")

	rr = executeRequest(t, h, http.MethodGet, "/v1/swagger/doc.json", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/entries/{entryID}")
}
