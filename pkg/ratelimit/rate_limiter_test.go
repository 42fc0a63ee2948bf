package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seatline/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 60,
		PublicRequests:  120,
		AuthRequests:    10,
		BookingRequests: 2,
		AdminRequests:   200,
		WhitelistedIPs:  []string{"10.0.0.1"},
	}
}

func newTestLimiter(t *testing.T) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, testConfig())
	rl.now = func() time.Time { return fixedNow }
	rl.newMember = func() string { return "m1" }
	return rl, mock
}

func expectWindow(mock redismock.ClientMock, key string, limit int) *redismock.ExpectedCmd {
	return mock.ExpectEval(slidingWindowScript, []string{key},
		fixedNow.Add(-time.Minute).UnixMicro(),
		fixedNow.UnixMicro(),
		limit,
		60,
		"m1",
	)
}

func TestIsAllowed_UnderLimit(t *testing.T) {
	rl, mock := newTestLimiter(t)
	expectWindow(mock, "seatline:ratelimit:booking:1.2.3.4", 2).SetVal([]interface{}{int64(1), int64(1)})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, fixedNow.Add(time.Minute).Unix(), res.ResetTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_OverLimit(t *testing.T) {
	rl, mock := newTestLimiter(t)
	expectWindow(mock, "seatline:ratelimit:booking:1.2.3.4", 2).SetVal([]interface{}{int64(3), int64(0)})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestIsAllowed_RedisError(t *testing.T) {
	rl, mock := newTestLimiter(t)
	expectWindow(mock, "seatline:ratelimit:auth:1.2.3.4", 10).SetErr(errors.New("connection refused"))

	_, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeAuth)
	assert.ErrorContains(t, err, "redis eval failed")
}

func TestIsAllowed_Bypass(t *testing.T) {
	rl, mock := newTestLimiter(t)

	res, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeHealth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	rl.config.Enabled = false
	res, err = rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Remaining)

	assert.NoError(t, mock.ExpectationsWereMet(), "no redis calls expected")
}

func TestGetRateLimitType(t *testing.T) {
	tests := map[string]RateLimitType{
		"/health":                               RateLimitTypeHealth,
		"/metrics":                              RateLimitTypeHealth,
		"/api/v1/admin/bookings/reconciliation": RateLimitTypeAdmin,
		"/api/v1/auth/login":                    RateLimitTypeAuth,
		"/api/v1/events/:id/bookings":           RateLimitTypeBooking,
		"/api/v1/bookings/:id/confirm":          RateLimitTypeBooking,
		"/api/v1/events/:id/seatmap":            RateLimitTypePublic,
		"/api/v1/status":                        RateLimitTypeDefault,
	}
	for path, want := range tests {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, mock := newTestLimiter(t)
	r := gin.New()
	r.Use(Middleware(rl))
	r.POST("/api/v1/bookings/:id/confirm", func(c *gin.Context) { c.Status(http.StatusOK) })

	key := "seatline:ratelimit:booking:1.2.3.4"
	expectWindow(mock, key, 2).SetVal([]interface{}{int64(2), int64(0)})
	expectWindow(mock, key, 2).SetVal([]interface{}{int64(3), int64(0)})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/abc/confirm", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.9.9.9")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
