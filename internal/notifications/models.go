package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a booking lifecycle transition
type EventType string

const (
	EventBookingInitiated EventType = "booking.initiated"
	EventBookingPaid      EventType = "booking.paid"
	EventBookingCancelled EventType = "booking.cancelled"
	EventSeatConflict     EventType = "seat.conflict"
)

const schemaVersion = 1

// BookingEvent is the message published on every engine transition
type BookingEvent struct {
	ID            uuid.UUID       `json:"id"`
	Type          EventType       `json:"type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	BookingID     string          `json:"booking_id"`
	EventID       string          `json:"event_id"`
	BuyerID       *string         `json:"buyer_id,omitempty"`
	Seats         []string        `json:"seats"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	PaymentID     string          `json:"payment_id,omitempty"`
	ConflictSeats []string        `json:"conflict_seats,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// NewBookingEvent stamps id, version and time on an event
func NewBookingEvent(eventType EventType, bookingID, eventID string) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Version:    schemaVersion,
		OccurredAt: time.Now().UTC(),
		BookingID:  bookingID,
		EventID:    eventID,
	}
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps all messages of one event on one partition, in order
func (e *BookingEvent) PartitionKey() string {
	return e.EventID
}
