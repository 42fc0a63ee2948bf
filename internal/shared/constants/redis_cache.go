package constants

import (
	"fmt"
	"time"
)

// Redis key layout: seatline:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "seatline"
)

// Seat map snapshots
const (
	CACHE_KEY_SEATMAP_SNAPSHOT = CACHE_PREFIX + ":seatmaps:snapshot:event:" // + event-id

	TTL_SEATMAP_SNAPSHOT = 30 * time.Second
)

// Event details
const (
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id

	TTL_EVENT_DETAIL = 5 * time.Minute
)

// Rate limiting
const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// BuildSeatMapSnapshotKey returns the cache key of an event's seat map snapshot
func BuildSeatMapSnapshotKey(eventID string) string {
	return CACHE_KEY_SEATMAP_SNAPSHOT + eventID
}

// BuildEventDetailKey returns the cache key of an event's details
func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

// BuildRateLimitKey returns the sliding window key for an identifier and route class
func BuildRateLimitKey(limitType, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", RATE_LIMIT_PREFIX, limitType, identifier)
}
