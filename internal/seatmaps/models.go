package seatmaps

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// SeatMap is the single seat layout of an event
type SeatMap struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seat_maps_event" json:"event_id"`
	Layout    Layout    `gorm:"type:jsonb;not null" json:"layout"`
	Width     float64   `gorm:"not null;default:800" json:"width"`
	Height    float64   `gorm:"not null;default:600" json:"height"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for SeatMap
func (SeatMap) TableName() string {
	return "seat_maps"
}

// Value stores the layout as a JSON document
func (l Layout) Value() (driver.Value, error) {
	if l.Objects == nil {
		l.Objects = []Seat{}
	}
	return json.Marshal(l)
}

// Scan reads a JSON document into the layout
func (l *Layout) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*l = Layout{Objects: []Seat{}}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Layout", value)
	}
	return json.Unmarshal(raw, l)
}

// SaveResult is returned by an upsert
type SaveResult struct {
	SeatMap *SeatMap
	Created bool
}
