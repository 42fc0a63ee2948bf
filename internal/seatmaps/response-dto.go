package seatmaps

import (
	"time"

	"github.com/google/uuid"
)

// SeatMapResponse is the read-only snapshot returned to buyers and organizers.
// Exists is false and Layout empty when the event has no seat map yet.
type SeatMapResponse struct {
	EventID   uuid.UUID  `json:"event_id"`
	Exists    bool       `json:"exists"`
	Layout    Layout     `json:"layout"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Version   int64      `json:"version"`
	Summary   Summary    `json:"summary"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func NewSeatMapResponse(eventID uuid.UUID, sm *SeatMap) *SeatMapResponse {
	if sm == nil {
		empty := Layout{Objects: []Seat{}}
		return &SeatMapResponse{
			EventID: eventID,
			Layout:  empty,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			Summary: Summarize(empty),
		}
	}
	updated := sm.UpdatedAt
	return &SeatMapResponse{
		EventID:   sm.EventID,
		Exists:    true,
		Layout:    sm.Layout,
		Width:     sm.Width,
		Height:    sm.Height,
		Version:   sm.Version,
		Summary:   Summarize(sm.Layout),
		UpdatedAt: &updated,
	}
}
