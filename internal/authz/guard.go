package authz

import (
	"seatline/internal/shared/apperrors"
)

type Role string

const (
	RoleGuest     Role = ""
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Identity is the caller as seen by the guard. A zero Identity is a guest.
type Identity struct {
	SubjectID string
	Role      Role
}

func Guest() Identity {
	return Identity{}
}

func (i Identity) IsGuest() bool {
	return i.SubjectID == ""
}

func (i Identity) IsAdmin() bool {
	return !i.IsGuest() && i.Role == RoleAdmin
}

// Guard decides which callers may mutate events and seat maps
type Guard struct {
	allowGuestBookings bool
}

func NewGuard(allowGuestBookings bool) *Guard {
	return &Guard{allowGuestBookings: allowGuestBookings}
}

// CanEditEvent allows the owning organizer or an admin
func (g *Guard) CanEditEvent(caller Identity, ownerID string) error {
	if caller.IsGuest() {
		return apperrors.Unauthorized("sign in to edit events")
	}
	if caller.IsAdmin() {
		return nil
	}
	if ownerID != "" && caller.SubjectID == ownerID {
		return nil
	}
	return apperrors.Forbidden("only the event organizer or an admin can modify this event")
}

func (g *Guard) CanCreateEvent(caller Identity) error {
	if caller.IsGuest() {
		return apperrors.Unauthorized("sign in to create events")
	}
	if caller.Role == RoleOrganizer || caller.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("only organizers can create events")
}

func (g *Guard) CanBook(caller Identity) error {
	if caller.IsGuest() && !g.allowGuestBookings {
		return apperrors.Unauthorized("sign in to book seats")
	}
	return nil
}

// CanAccessBooking allows the buyer, an admin, or anyone holding the id of a guest booking
func (g *Guard) CanAccessBooking(caller Identity, buyerID *string) error {
	if buyerID == nil || caller.IsAdmin() {
		return nil
	}
	if caller.IsGuest() {
		return apperrors.Unauthorized("sign in to access this booking")
	}
	if caller.SubjectID == *buyerID {
		return nil
	}
	return apperrors.Forbidden("booking belongs to another user")
}

func (g *Guard) RequireAdmin(caller Identity) error {
	if caller.IsGuest() {
		return apperrors.Unauthorized("")
	}
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
