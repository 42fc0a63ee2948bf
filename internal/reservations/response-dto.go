package reservations

import (
	"seatline/internal/bookings"
	"seatline/internal/payments"
	"seatline/internal/seatmaps"
)

type InitiateResponse struct {
	Booking *bookings.Booking `json:"booking"`
	Order   *payments.Order   `json:"order"`
}

type ConfirmResponse struct {
	Booking *bookings.Booking      `json:"booking"`
	Commit  *seatmaps.CommitResult `json:"commit"`
}
