package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "INR"
	DefaultProvider = "razorpay"

	// amountScale matches the numeric(12,2) amount column
	amountScale = 2
)

// SeatLine is one seat of a booking with the price frozen at creation
type SeatLine struct {
	SeatNo string          `json:"seatNo"`
	Price  decimal.Decimal `json:"price"`
}

// Booking is one checkout attempt for a set of seats of an event
type Booking struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingRef          string          `gorm:"uniqueIndex;not null;size:32" json:"booking_ref"`
	EventID             uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	UserID              *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Seats               []SeatLine      `gorm:"type:jsonb;serializer:json;not null" json:"seats"`
	Amount              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency            string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	PaymentProvider     string          `gorm:"type:varchar(20);not null;default:'razorpay'" json:"payment_provider"`
	OrderID             *string         `gorm:"index;size:64" json:"order_id,omitempty"`
	PaymentID           *string         `gorm:"size:64" json:"payment_id,omitempty"`
	Status              Status          `gorm:"type:varchar(20);index;not null;check:status IN ('pending', 'paid', 'cancelled');default:'pending'" json:"status"`
	SeatsCommitted      bool            `gorm:"not null;default:false" json:"seats_committed"`
	NeedsReconciliation bool            `gorm:"not null;default:false;index" json:"needs_reconciliation"`
	ConflictSeats       []string        `gorm:"type:jsonb;serializer:json" json:"conflict_seats,omitempty"`
	CancelReason        string          `gorm:"size:120" json:"cancel_reason,omitempty"`
	PaidAt              *time.Time      `json:"paid_at,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// SeatNos returns the booked seat numbers in their original order
func (b *Booking) SeatNos() []string {
	out := make([]string, len(b.Seats))
	for i, s := range b.Seats {
		out[i] = s.SeatNo
	}
	return out
}

// BuyerID returns the buyer as a string, nil for guest bookings
func (b *Booking) BuyerID() *string {
	if b.UserID == nil {
		return nil
	}
	id := b.UserID.String()
	return &id
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsPaid() bool {
	return b.Status == StatusPaid
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// SumSeats adds up the frozen seat prices
func SumSeats(seats []SeatLine) decimal.Decimal {
	total := decimal.Zero
	for _, s := range seats {
		total = total.Add(s.Price)
	}
	return total
}
