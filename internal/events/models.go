package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is owned by one organizer and referenced by its seat map and bookings
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizerID uuid.UUID `json:"organizer_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	City        string    `json:"city" gorm:"size:120"`
	VenueName   string    `json:"venue_name" gorm:"size:255"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Performers  []string  `json:"performers" gorm:"type:jsonb;serializer:json"`
	IsPublished bool      `json:"is_published" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Event
func (Event) TableName() string {
	return "events"
}

// OwnerID returns the organizer id as a string for authorization checks
func (e *Event) OwnerID() string {
	return e.OrganizerID.String()
}
