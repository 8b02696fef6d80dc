package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("allows up to max then rejects", func(t *testing.T) {
		h := Wrap(okHandler(), RateLimit(RateLimitConfig{Max: 3, Window: time.Minute}))

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "rate limit exceeded")
	})

	t.Run("separate keys have separate budgets", func(t *testing.T) {
		h := Wrap(okHandler(), RateLimit(RateLimitConfig{Max: 1, Window: time.Minute}))

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.Header.Set("X-Forwarded-For", "10.0.0.1")
		second := httptest.NewRequest(http.MethodGet, "/", nil)
		second.Header.Set("X-Forwarded-For", "10.0.0.2")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("headers expose the budget", func(t *testing.T) {
		h := Wrap(okHandler(), RateLimit(RateLimitConfig{Max: 5, Window: time.Minute}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*http.Request)
		want string
	}{
		{
			name: "x-forwarded-for single",
			mod:  func(r *http.Request) { r.Header.Set("X-Forwarded-For", "1.2.3.4") },
			want: "1.2.3.4",
		},
		{
			name: "x-forwarded-for chain uses first hop",
			mod:  func(r *http.Request) { r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8") },
			want: "1.2.3.4",
		},
		{
			name: "x-real-ip",
			mod:  func(r *http.Request) { r.Header.Set("X-Real-IP", "9.9.9.9") },
			want: "9.9.9.9",
		},
		{
			name: "remote addr fallback",
			mod:  func(r *http.Request) { r.RemoteAddr = "192.0.2.1:5123" },
			want: "192.0.2.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.mod(r)
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates when absent", func(t *testing.T) {
		var seen string
		h := Wrap(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}), RequestID())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses valid incoming id", func(t *testing.T) {
		h := Wrap(okHandler(), RequestID())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-id-123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-id-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("rejects non-printable id", func(t *testing.T) {
		h := Wrap(okHandler(), RequestID())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "bad\x01id")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.NotEqual(t, "bad\x01id", rec.Header().Get("X-Request-ID"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recovery())

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
