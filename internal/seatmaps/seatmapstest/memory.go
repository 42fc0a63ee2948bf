// Package seatmapstest provides an in-memory seat map repository for tests.
package seatmapstest

import (
	"context"
	"sync"
	"time"

	"seatline/internal/seatmaps"
	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Repository keeps seat maps in memory. Each call is serialized by a mutex,
// which stands in for the store-level atomic update.
type Repository struct {
	mu      sync.Mutex
	maps    map[uuid.UUID]seatmaps.SeatMap
	commits int
}

func NewRepository() *Repository {
	return &Repository{maps: map[uuid.UUID]seatmaps.SeatMap{}}
}

// Seed stores a seat map directly
func (r *Repository) Seed(eventID uuid.UUID, seats ...seatmaps.Seat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.maps[eventID] = seatmaps.SeatMap{
		ID:        uuid.New(),
		EventID:   eventID,
		Layout:    seatmaps.Layout{Objects: append([]seatmaps.Seat{}, seats...)},
		Width:     seatmaps.DefaultWidth,
		Height:    seatmaps.DefaultHeight,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Commits counts MarkSeatsBooked calls that changed the layout
func (r *Repository) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *Repository) GetByEvent(_ context.Context, eventID uuid.UUID) (*seatmaps.SeatMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.maps[eventID]
	if !ok {
		return nil, nil
	}
	sm.Layout = sm.Layout.Clone()
	return &sm, nil
}

func (r *Repository) Upsert(_ context.Context, eventID uuid.UUID, layout seatmaps.Layout, width, height float64) (*seatmaps.SaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()

	current, ok := r.maps[eventID]
	if !ok {
		sm := seatmaps.SeatMap{
			ID:        uuid.New(),
			EventID:   eventID,
			Layout:    layout.Clone(),
			Width:     positive(width, seatmaps.DefaultWidth),
			Height:    positive(height, seatmaps.DefaultHeight),
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.maps[eventID] = sm
		out := sm
		return &seatmaps.SaveResult{SeatMap: &out, Created: true}, nil
	}

	merged, err := seatmaps.MergeBooked(current.Layout, layout)
	if err != nil {
		return nil, err
	}
	current.Layout = merged
	current.Width = positive(width, current.Width)
	current.Height = positive(height, current.Height)
	current.Version++
	current.UpdatedAt = now
	r.maps[eventID] = current
	out := current
	out.Layout = current.Layout.Clone()
	return &seatmaps.SaveResult{SeatMap: &out, Created: false}, nil
}

func (r *Repository) MarkSeatsBooked(_ context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*seatmaps.CommitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.maps[eventID]
	if !ok {
		return nil, apperrors.NotFound("seat map for event", eventID.String())
	}
	next, result, changed := seatmaps.CommitSeats(current.Layout, seatNos, bookingID)
	if changed {
		current.Layout = next
		current.Version++
		current.UpdatedAt = time.Now().UTC()
		r.maps[eventID] = current
		r.commits++
	}
	return &result, nil
}

func positive(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
