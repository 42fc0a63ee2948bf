package users

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"seatline/internal/authz"
	"seatline/internal/shared/apperrors"
)

type ProfileKind string

const (
	ProfileOrganizer ProfileKind = "organizer"
	ProfileAttendee  ProfileKind = "attendee"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type OrganizerProfile struct {
	FullName           string             `json:"full_name"`
	BusinessName       string             `json:"business_name"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

type AttendeeProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile holds exactly one of the role-specific variants.
// Build it with NewOrganizerProfile or NewAttendeeProfile.
type Profile struct {
	Organizer *OrganizerProfile
	Attendee  *AttendeeProfile
}

func NewOrganizerProfile(fullName, businessName string) (Profile, error) {
	fullName, businessName = strings.TrimSpace(fullName), strings.TrimSpace(businessName)
	if fullName == "" {
		return Profile{}, apperrors.Validation("full_name", "full name is required for organizers")
	}
	if businessName == "" {
		return Profile{}, apperrors.Validation("business_name", "business name is required for organizers")
	}
	return Profile{Organizer: &OrganizerProfile{
		FullName:           fullName,
		BusinessName:       businessName,
		VerificationStatus: VerificationPending,
	}}, nil
}

func NewAttendeeProfile(firstName, lastName string) (Profile, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" {
		return Profile{}, apperrors.Validation("first_name", "first name is required")
	}
	if lastName == "" {
		return Profile{}, apperrors.Validation("last_name", "last name is required")
	}
	return Profile{Attendee: &AttendeeProfile{FirstName: firstName, LastName: lastName}}, nil
}

func (p Profile) Kind() ProfileKind {
	if p.Organizer != nil {
		return ProfileOrganizer
	}
	if p.Attendee != nil {
		return ProfileAttendee
	}
	return ""
}

// Matches reports whether the profile variant fits the role
func (p Profile) Matches(role authz.Role) bool {
	switch role {
	case authz.RoleOrganizer:
		return p.Kind() == ProfileOrganizer
	case authz.RoleUser:
		return p.Kind() == ProfileAttendee
	case authz.RoleAdmin:
		return p.Kind() != ""
	}
	return false
}

type profileJSON struct {
	Kind      ProfileKind       `json:"kind"`
	Organizer *OrganizerProfile `json:"organizer,omitempty"`
	Attendee  *AttendeeProfile  `json:"attendee,omitempty"`
}

func (p Profile) MarshalJSON() ([]byte, error) {
	if p.Organizer != nil && p.Attendee != nil {
		return nil, errors.New("profile has more than one variant")
	}
	return json.Marshal(profileJSON{Kind: p.Kind(), Organizer: p.Organizer, Attendee: p.Attendee})
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw profileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case ProfileOrganizer:
		if raw.Organizer == nil {
			return errors.New("organizer profile has no data")
		}
		*p = Profile{Organizer: raw.Organizer}
	case ProfileAttendee:
		if raw.Attendee == nil {
			return errors.New("attendee profile has no data")
		}
		*p = Profile{Attendee: raw.Attendee}
	default:
		return fmt.Errorf("unknown profile kind %q", raw.Kind)
	}
	return nil
}

// Value implements driver.Valuer for the jsonb column
func (p Profile) Value() (driver.Value, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the jsonb column
func (p *Profile) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*p = Profile{}
		return nil
	default:
		return fmt.Errorf("unsupported profile column type %T", value)
	}
	return p.UnmarshalJSON(b)
}
