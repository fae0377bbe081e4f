package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limited := RateLimit(StrictLimit)(okHandler())

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":51234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	// GIVEN one address spending its whole burst
	for i := 0; i < StrictLimit.Burst; i++ {
		assert.Equal(t, http.StatusNoContent, do("10.0.0.1").Code, "request %d", i+1)
	}

	// WHEN it sends one more
	rec := do("10.0.0.1")

	// THEN the limiter answers 429 with a Retry-After hint
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)

	// AND a different address is unaffected
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2").Code)
}

func TestRateLimitKeysOnForwardedHeader(t *testing.T) {
	// Behind a proxy every request shares the proxy's RemoteAddr; the
	// limiter must key on the originating client instead.
	limited := RateLimit(StrictLimit)(okHandler())

	do := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:80" // the proxy
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < StrictLimit.Burst; i++ {
		require.Equal(t, http.StatusNoContent, do("203.0.113.7").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7").Code)
	assert.Equal(t, http.StatusNoContent, do("203.0.113.8").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	assert.Equal(t, "192.0.2.9", clientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	// X-Forwarded-For wins, first hop only.
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.7")
	assert.Equal(t, "198.51.100.4", clientIP(req))
}
