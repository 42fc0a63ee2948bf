package reservations

import "github.com/shopspring/decimal"

// InitiateBookingRequest carries the selected seats and the total the client computed
type InitiateBookingRequest struct {
	Seats  []string         `json:"seats"`
	Amount *decimal.Decimal `json:"amount"`
}

// ConfirmBookingRequest is the payment success callback of the client checkout
type ConfirmBookingRequest struct {
	PaymentID string   `json:"payment_id" binding:"required,max=64"`
	OrderID   string   `json:"order_id" binding:"omitempty,max=64"`
	Signature string   `json:"signature" binding:"omitempty,max=256"`
	Seats     []string `json:"seats"`
}
