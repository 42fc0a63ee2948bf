package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackTransition(t *testing.T) {
	before := testutil.ToFloat64(bookingTransitions.WithLabelValues("confirm", "seat_conflict"))
	TrackTransition("confirm", "seat_conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("confirm", "seat_conflict")))
}

func TestTrackReaperCancelled(t *testing.T) {
	before := testutil.ToFloat64(reaperCancelled)
	TrackReaperCancelled(3)
	assert.Equal(t, before+3, testutil.ToFloat64(reaperCancelled))
}

func TestTrackRecommitted(t *testing.T) {
	before := testutil.ToFloat64(reaperRecommitted)
	TrackRecommitted(2)
	assert.Equal(t, before+2, testutil.ToFloat64(reaperRecommitted))
}

func TestHandlerExposesMetrics(t *testing.T) {
	TrackSeatConflict("evt-1")
	ObserveGateway("razorpay", "create_order", time.Now(), errors.New("boom"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `seatline_seat_conflicts_total{event_id="evt-1"}`)
	assert.Contains(t, body, `seatline_payment_gateway_seconds_count{operation="create_order",provider="razorpay",status="error"}`)
}
