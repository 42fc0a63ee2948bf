package seatmaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatline/internal/shared/apperrors"
	"seatline/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the single seat map of each event
type Repository interface {
	// GetByEvent returns nil, nil when the event has no seat map yet
	GetByEvent(ctx context.Context, eventID uuid.UUID) (*SeatMap, error)

	// Upsert creates the seat map or atomically replaces its layout and extents.
	// Booked seats survive a replace. A non-positive width or height keeps the
	// stored value, or the default on create.
	Upsert(ctx context.Context, eventID uuid.UUID, layout Layout, width, height float64) (*SaveResult, error)

	// MarkSeatsBooked moves the named seats to booked for bookingID and reports
	// which seats were already booked by someone else or do not exist
	MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*CommitResult, error)
}

type repository struct {
	db         *gorm.DB
	maxRetries int
}

// NewRepository returns the PostgreSQL store. Writes are a compare-and-swap
// on the version column, retried up to maxRetries times.
func NewRepository(db *gorm.DB, maxRetries int) Repository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &repository{db: db, maxRetries: maxRetries}
}

func (r *repository) GetByEvent(ctx context.Context, eventID uuid.UUID) (*SeatMap, error) {
	var sm SeatMap
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&sm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	return &sm, nil
}

func (r *repository) Upsert(ctx context.Context, eventID uuid.UUID, layout Layout, width, height float64) (*SaveResult, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		current, err := r.GetByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if current == nil {
			sm := SeatMap{
				ID:        uuid.New(),
				EventID:   eventID,
				Layout:    layout,
				Width:     orDefault(width, DefaultWidth),
				Height:    orDefault(height, DefaultHeight),
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			res := r.db.WithContext(ctx).
				Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
				Create(&sm)
			if res.Error != nil {
				return nil, fmt.Errorf("failed to create seat map: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				return &SaveResult{SeatMap: &sm, Created: true}, nil
			}
			// Created concurrently; replace it on the next pass
			continue
		}

		merged, err := MergeBooked(current.Layout, layout)
		if err != nil {
			return nil, err
		}
		next := *current
		next.Layout = merged
		next.Width = orDefault(width, current.Width)
		next.Height = orDefault(height, current.Height)
		next.Version = current.Version + 1
		next.UpdatedAt = now

		res := r.db.WithContext(ctx).
			Model(&SeatMap{}).
			Where("event_id = ? AND version = ?", eventID, current.Version).
			Updates(map[string]interface{}{
				"layout":     next.Layout,
				"width":      next.Width,
				"height":     next.Height,
				"version":    next.Version,
				"updated_at": now,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to replace seat map: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return &SaveResult{SeatMap: &next, Created: false}, nil
		}

		if err := backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, apperrors.Conflict("seat map for event %s is busy, retry the save", eventID)
}

func (r *repository) MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*CommitResult, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		current, err := r.GetByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperrors.NotFound("seat map for event", eventID.String())
		}

		next, result, changed := CommitSeats(current.Layout, seatNos, bookingID)
		if !changed {
			return &result, nil
		}

		res := r.db.WithContext(ctx).
			Model(&SeatMap{}).
			Where("event_id = ? AND version = ?", eventID, current.Version).
			Updates(map[string]interface{}{
				"layout":     next,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to commit seats: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return &result, nil
		}

		// Another writer bumped the version; reload and retry
		if err := backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, apperrors.Conflict("seat map for event %s is busy, retry the confirmation", eventID)
}

// orDefault treats a non-positive extent as "not supplied"
func orDefault(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func commitBackoff(attempt int) time.Duration {
	d := time.Duration(1<<attempt) * 5 * time.Millisecond
	if d > 200*time.Millisecond {
		d = 200 * time.Millisecond
	}
	return d
}

// backoff waits before the next optimistic attempt
func backoff(ctx context.Context, attempt int) error {
	metrics.TrackCommitRetry()
	t := time.NewTimer(commitBackoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
