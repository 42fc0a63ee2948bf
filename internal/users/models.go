package users

import (
	"time"

	"seatline/internal/authz"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password    string     `json:"-" gorm:"not null"` // bcrypt hash
	Role        authz.Role `json:"role" gorm:"type:varchar(20);not null;default:'user';check:role IN ('user', 'organizer', 'admin')"`
	Profile     Profile    `json:"profile" gorm:"type:jsonb;not null"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the table name for User
func (User) TableName() string {
	return "users"
}

// DisplayName is the name shown on bookings and events
func (u *User) DisplayName() string {
	switch {
	case u.Profile.Organizer != nil:
		return u.Profile.Organizer.FullName
	case u.Profile.Attendee != nil:
		return u.Profile.Attendee.FirstName + " " + u.Profile.Attendee.LastName
	}
	return u.Email
}

// IsVerifiedOrganizer reports whether the user may publish events
func (u *User) IsVerifiedOrganizer() bool {
	return u.Role == authz.RoleOrganizer &&
		u.Profile.Organizer != nil &&
		u.Profile.Organizer.VerificationStatus == VerificationVerified
}

// RoleForSignup maps a requested role to one a user may pick at registration
func RoleForSignup(requested string) (authz.Role, bool) {
	switch authz.Role(requested) {
	case "", authz.RoleUser:
		return authz.RoleUser, true
	case authz.RoleOrganizer:
		return authz.RoleOrganizer, true
	}
	return "", false
}
