package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadiness(t *testing.T) {
	t.Run("not ready until gate opens", func(t *testing.T) {
		h := New()
		assert.False(t, h.IsReady())

		h.SetReady(true)
		assert.True(t, h.IsReady())

		h.SetReady(false)
		assert.False(t, h.IsReady())
	})

	t.Run("ready endpoint reports gate state", func(t *testing.T) {
		h := New()

		rec := httptest.NewRecorder()
		h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "service is not ready")

		h.SetReady(true)
		rec = httptest.NewRecorder()
		h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})
}

func TestLiveEndpoint(t *testing.T) {
	t.Run("healthy by default", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("noop", time.Second, func(context.Context) error { return nil })

		rec := httptest.NewRecorder()
		h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing probe flips after threshold", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("broken", time.Second, func(context.Context) error {
			return errors.New("connection refused")
		})

		// Below the failure threshold the probe still reads healthy.
		p := h.liveness[0]
		p.tick(context.Background())
		p.tick(context.Background())
		assert.True(t, p.healthy.Load())

		p.tick(context.Background())
		assert.False(t, p.healthy.Load())

		rec := httptest.NewRecorder()
		h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})

	t.Run("single pass recovers the probe", func(t *testing.T) {
		h := New()
		var fail atomic.Bool
		fail.Store(true)
		h.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
			if fail.Load() {
				return errors.New("down")
			}
			return nil
		})

		p := h.liveness[0]
		for range 3 {
			p.tick(context.Background())
		}
		require.False(t, p.healthy.Load())

		fail.Store(false)
		p.tick(context.Background())
		assert.True(t, p.healthy.Load())
	})
}

func TestReadinessChecksGateIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("no route to host")
	})
	h.SetReady(true)

	p := h.readiness[0]
	for range 3 {
		p.tick(context.Background())
	}

	assert.False(t, h.IsReady())

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no route to host")
}

func TestStartStop(t *testing.T) {
	h := New()
	var calls atomic.Int64
	h.AddLivenessCheck("counter", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), settled+1)
}

func TestProbeTimeout(t *testing.T) {
	h := New()
	h.AddLivenessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	p := h.liveness[0]
	start := time.Now()
	for range 3 {
		p.tick(context.Background())
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, p.healthy.Load())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
