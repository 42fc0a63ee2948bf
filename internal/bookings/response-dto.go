package bookings

import "math"

type PaginatedBookings struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

func NewPaginatedBookings(items []Booking, total int64, query ListQuery) *PaginatedBookings {
	query.normalize()
	if items == nil {
		items = []Booking{}
	}
	return &PaginatedBookings{
		Bookings:   items,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}
}

// CalculateTotalPages returns the page count for a result set
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
