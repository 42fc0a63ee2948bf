package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "razorpay", cfg.Payment.Provider)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, "postgres", cfg.Booking.SeatMapStore)
	assert.Equal(t, 15*time.Minute, cfg.Booking.PendingTTL)
	assert.Equal(t, time.Minute, cfg.Booking.CommitGrace)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.Database.DSN, "dbname=seatline_db")
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PAYMENT_PROVIDER", "Omise")
	t.Setenv("BOOKING_PENDING_TTL", "5m")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("EVENTS_BROKER", "kafka")
	t.Setenv("EVENTS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATE_LIMIT_WHITELISTED_IPS", "10.0.0.1,10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.Equal(t, "omise", cfg.Payment.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Booking.PendingTTL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.WhitelistedIPs)
}

func TestLoad_RejectsUnknownBackends(t *testing.T) {
	t.Setenv("BOOKING_SEATMAP_STORE", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, "BOOKING_SEATMAP_STORE")
}

func TestLoad_RejectsInvalidDuration(t *testing.T) {
	t.Setenv("BOOKING_REAPER_INTERVAL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
