package bookings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateParams describes a new pending booking
type CreateParams struct {
	EventID  uuid.UUID
	BuyerID  *uuid.UUID
	Seats    []SeatLine
	Amount   decimal.Decimal
	Currency string
	Provider string
}

type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending paid cancelled"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q *ListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
}
