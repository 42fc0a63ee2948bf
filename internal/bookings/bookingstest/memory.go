// Package bookingstest provides an in-memory booking repository for tests.
package bookingstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"seatline/internal/bookings"
	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Repository keeps bookings in memory. Conditional transitions are atomic under the mutex.
type Repository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]bookings.Booking
}

func NewRepository() *Repository {
	return &Repository{bookings: map[uuid.UUID]bookings.Booking{}}
}

// Put stores a booking as is
func (r *Repository) Put(b bookings.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
}

// Len counts stored bookings
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *Repository) Create(_ context.Context, b *bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = *b
	return nil
}

func (r *Repository) FindByID(_ context.Context, id uuid.UUID) (*bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id.String())
	}
	return &b, nil
}

// MarkPaid enforces the provider payment id uniqueness of the SQL store
func (r *Repository) MarkPaid(_ context.Context, id uuid.UUID, paymentID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != bookings.StatusPending {
		return false, nil
	}
	for otherID, other := range r.bookings {
		if otherID != id && other.PaymentProvider == b.PaymentProvider && other.PaymentID != nil && *other.PaymentID == paymentID {
			return false, apperrors.Conflict("payment %s already settles another booking", paymentID)
		}
	}
	b.Status = bookings.StatusPaid
	b.PaymentID = &paymentID
	b.PaidAt = &at
	b.UpdatedAt = time.Now().UTC()
	r.bookings[id] = b
	return true, nil
}

func (r *Repository) Cancel(_ context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	return r.transition(id, func(b *bookings.Booking) {
		b.Status = bookings.StatusCancelled
		b.CancelReason = reason
		b.CancelledAt = &at
	}), nil
}

func (r *Repository) transition(id uuid.UUID, apply func(*bookings.Booking)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != bookings.StatusPending {
		return false
	}
	apply(&b)
	b.UpdatedAt = time.Now().UTC()
	r.bookings[id] = b
	return true
}

func (r *Repository) SetOrderID(_ context.Context, id uuid.UUID, orderID string) error {
	return r.modify(id, func(b *bookings.Booking) { b.OrderID = &orderID })
}

func (r *Repository) MarkSeatsCommitted(_ context.Context, id uuid.UUID) error {
	return r.modify(id, func(b *bookings.Booking) { b.SeatsCommitted = true })
}

func (r *Repository) FlagReconciliation(_ context.Context, id uuid.UUID, seats []string) error {
	return r.modify(id, func(b *bookings.Booking) {
		b.NeedsReconciliation = true
		b.ConflictSeats = append([]string(nil), seats...)
	})
}

func (r *Repository) modify(id uuid.UUID, apply func(*bookings.Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NotFound("booking", id.String())
	}
	apply(&b)
	r.bookings[id] = b
	return nil
}

func (r *Repository) ListByUser(_ context.Context, userID uuid.UUID, query bookings.ListQuery) ([]bookings.Booking, int64, error) {
	return r.list(query, func(b bookings.Booking) bool {
		if b.UserID == nil || *b.UserID != userID {
			return false
		}
		return query.Status == "" || string(b.Status) == query.Status
	})
}

func (r *Repository) ListNeedsReconciliation(_ context.Context, query bookings.ListQuery) ([]bookings.Booking, int64, error) {
	return r.list(query, func(b bookings.Booking) bool {
		return b.Status == bookings.StatusPaid && (b.NeedsReconciliation || !b.SeatsCommitted)
	})
}

func (r *Repository) list(query bookings.ListQuery, keep func(bookings.Booking) bool) ([]bookings.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bookings.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := int64(len(out))
	page, limit := query.Page, query.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return []bookings.Booking{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *Repository) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bookings.Booking
	for _, b := range r.bookings {
		if b.Status == bookings.StatusPending && b.CreatedAt.Before(createdBefore) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) ListUncommittedPaid(_ context.Context, paidBefore time.Time, limit int) ([]bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bookings.Booking
	for _, b := range r.bookings {
		if b.Status == bookings.StatusPaid && !b.SeatsCommitted && b.PaidAt != nil && b.PaidAt.Before(paidBefore) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(*out[j].PaidAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
