package authz

import (
	"testing"

	"seatline/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestCanEditEvent(t *testing.T) {
	g := NewGuard(true)
	ownerA := "organizer-a"

	tests := []struct {
		name      string
		caller    Identity
		wantErr   bool
		forbidden bool
	}{
		{name: "owner", caller: Identity{SubjectID: ownerA, Role: RoleOrganizer}},
		{name: "admin", caller: Identity{SubjectID: "root", Role: RoleAdmin}},
		{name: "other organizer", caller: Identity{SubjectID: "organizer-b", Role: RoleOrganizer}, wantErr: true, forbidden: true},
		{name: "attendee", caller: Identity{SubjectID: "u1", Role: RoleUser}, wantErr: true, forbidden: true},
		{name: "guest", caller: Guest(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.CanEditEvent(tt.caller, ownerA)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.forbidden, apperrors.IsForbidden(err))
		})
	}
}

func TestCanEditEvent_AdminRoleWithoutSubjectIsGuest(t *testing.T) {
	err := NewGuard(true).CanEditEvent(Identity{Role: RoleAdmin}, "owner")
	assert.Error(t, err)
	assert.False(t, apperrors.IsForbidden(err))
}

func TestCanBook(t *testing.T) {
	assert.NoError(t, NewGuard(true).CanBook(Guest()))
	assert.Error(t, NewGuard(false).CanBook(Guest()))
	assert.NoError(t, NewGuard(false).CanBook(Identity{SubjectID: "u1", Role: RoleUser}))
}

func TestCanCreateEvent(t *testing.T) {
	g := NewGuard(true)
	assert.NoError(t, g.CanCreateEvent(Identity{SubjectID: "o1", Role: RoleOrganizer}))
	assert.True(t, apperrors.IsForbidden(g.CanCreateEvent(Identity{SubjectID: "u1", Role: RoleUser})))
	assert.Error(t, g.CanCreateEvent(Guest()))
}

func TestCanAccessBooking(t *testing.T) {
	g := NewGuard(true)
	buyer := "u1"

	assert.NoError(t, g.CanAccessBooking(Guest(), nil))
	assert.NoError(t, g.CanAccessBooking(Identity{SubjectID: "u1", Role: RoleUser}, &buyer))
	assert.NoError(t, g.CanAccessBooking(Identity{SubjectID: "root", Role: RoleAdmin}, &buyer))
	assert.True(t, apperrors.IsForbidden(g.CanAccessBooking(Identity{SubjectID: "u2", Role: RoleUser}, &buyer)))
	assert.Error(t, g.CanAccessBooking(Guest(), &buyer))
}
