package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/limiter"
)

func TestWebSocketRejectsMissingToken(t *testing.T) {
	deps, _ := newTestDeps()
	lim := limiter.NewIPRateLimiter(rate.Limit(10), 10)

	h := HandleWebSocket(websocket.Upgrader{}, lim, deps)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.ErrUnauthorized, decodeEnvelope(t, rec).Code)
}

func TestWebSocketRejectsGarbageToken(t *testing.T) {
	deps, _ := newTestDeps()
	lim := limiter.NewIPRateLimiter(rate.Limit(10), 10)

	h := HandleWebSocket(websocket.Upgrader{}, lim, deps)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/ws?token=not-a-jwt", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebSocketRateLimit(t *testing.T) {
	deps, _ := newTestDeps()
	lim := limiter.NewIPRateLimiter(rate.Limit(0), 1)

	h := HandleWebSocket(websocket.Upgrader{}, lim, deps)

	first := httptest.NewRecorder()
	h(first, httptest.NewRequest(http.MethodGet, "/ws", nil))
	second := httptest.NewRecorder()
	h(second, httptest.NewRequest(http.MethodGet, "/ws", nil))

	// The single burst token is spent on the first request.
	require.Equal(t, http.StatusUnauthorized, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, errs.ErrRateLimitExceeded, decodeEnvelope(t, second).Code)
}
