package ratelimit

import (
	"context"
	"fmt"
	"time"

	"seatline/internal/shared/config"
	"seatline/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault RateLimitType = "default"
	RateLimitTypePublic  RateLimitType = "public"
	RateLimitTypeAuth    RateLimitType = "auth"
	RateLimitTypeBooking RateLimitType = "booking"
	RateLimitTypeAdmin   RateLimitType = "admin"
	RateLimitTypeHealth  RateLimitType = "health"
)

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Sliding window over a sorted set scored in microseconds.
// Returns {count after this request, remaining}.
const slidingWindowScript = `
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_seconds = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current_count = redis.call('ZCARD', key)
if current_count >= limit then
	redis.call('EXPIRE', key, window_seconds)
	return {current_count + 1, 0}
end

redis.call('ZADD', key, now, member)
redis.call('EXPIRE', key, window_seconds)
return {current_count + 1, limit - current_count - 1}
`

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client    redis.Cmdable
	config    config.RateLimitConfig
	whitelist map[string]struct{}
	now       func() time.Time
	newMember func() string
}

func NewRateLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *RateLimiter {
	whitelist := make(map[string]struct{}, len(cfg.WhitelistedIPs))
	for _, ip := range cfg.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}
	return &RateLimiter{
		client:    client,
		config:    cfg,
		whitelist: whitelist,
		now:       time.Now,
		newMember: uuid.NewString,
	}
}

// IsAllowed records a request from clientIP against the limit of its route class
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	// Probes are never throttled
	if !r.config.Enabled || limitType == RateLimitTypeHealth || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(string(limitType), clientIP)
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)

	result, err := r.client.Eval(ctx, slidingWindowScript, []string{key},
		windowStart.UnixMicro(),
		now.UnixMicro(),
		limit,
		int(r.config.WindowDuration.Seconds()),
		r.newMember(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response %v", result)
	}
	currentCount, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("unexpected redis response %v", values)
	}

	return &Result{
		Allowed:   int(currentCount) <= limit,
		Limit:     limit,
		Remaining: int(remaining),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeBooking:
		return r.config.BookingRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
