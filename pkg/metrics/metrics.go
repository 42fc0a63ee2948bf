package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatline_booking_transitions_total",
			Help: "Booking state machine transitions by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	seatConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatline_seat_conflicts_total",
			Help: "Paid bookings whose seats were already taken at commit",
		},
		[]string{"event_id"},
	)

	gatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seatline_payment_gateway_seconds",
			Help:    "Latency of payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider", "operation", "status"},
	)

	seatCommitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatline_seat_commit_retries_total",
			Help: "Optimistic seat map writes retried after a version clash",
		},
	)

	reaperCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatline_reaper_cancelled_total",
			Help: "Pending bookings cancelled by the reaper",
		},
	)

	reaperRecommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatline_reaper_recommitted_total",
			Help: "Paid bookings whose seat commit was re-driven by the reaper",
		},
	)
)

// TrackTransition counts one engine step, e.g. ("confirm", "success")
func TrackTransition(step, outcome string) {
	bookingTransitions.WithLabelValues(step, outcome).Inc()
}

func TrackSeatConflict(eventID string) {
	seatConflicts.WithLabelValues(eventID).Inc()
}

// ObserveGateway records a gateway call started at start
func ObserveGateway(provider, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	gatewayLatency.WithLabelValues(provider, operation, status).Observe(time.Since(start).Seconds())
}

func TrackCommitRetry() {
	seatCommitRetries.Inc()
}

func TrackReaperCancelled(n int) {
	reaperCancelled.Add(float64(n))
}

func TrackRecommitted(n int) {
	reaperRecommitted.Add(float64(n))
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
