package events

import "time"

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=3,max=255"`
	City        string    `json:"city" binding:"required,max=120"`
	VenueName   string    `json:"venue_name" binding:"required,max=255"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Description string    `json:"description" binding:"max=5000"`
	Performers  []string  `json:"performers" binding:"omitempty,dive,min=1,max=120"`
}

// UpdateEventRequest merges only the supplied fields into the event
type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	City        *string    `json:"city" binding:"omitempty,max=120"`
	VenueName   *string    `json:"venue_name" binding:"omitempty,max=255"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Performers  []string   `json:"performers" binding:"omitempty,dive,min=1,max=120"`
}

type ListEventsQuery struct {
	City   string `form:"city"`
	Search string `form:"search" binding:"omitempty,max=100"` // matches name or description
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
}
