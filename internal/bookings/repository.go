package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Conditional transitions. They report false when the booking was not pending.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID string, at time.Time) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)

	SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error
	MarkSeatsCommitted(ctx context.Context, id uuid.UUID) error
	FlagReconciliation(ctx context.Context, id uuid.UUID, seats []string) error

	ListByUser(ctx context.Context, userID uuid.UUID, query ListQuery) ([]Booking, int64, error)
	ListNeedsReconciliation(ctx context.Context, query ListQuery) ([]Booking, int64, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]Booking, error)
	ListUncommittedPaid(ctx context.Context, paidBefore time.Time, limit int) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking", id.String())
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusPaid,
			"payment_id": paymentID,
			"paid_at":    at,
			"updated_at": at,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, apperrors.Conflict("payment %s already settles another booking", paymentID)
		}
		return false, fmt.Errorf("failed to mark booking paid: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":        StatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error {
	return r.update(ctx, id, map[string]interface{}{"order_id": orderID})
}

func (r *repository) MarkSeatsCommitted(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]interface{}{"seats_committed": true})
}

// FlagReconciliation goes through the model so the seat list is JSON serialized
func (r *repository) FlagReconciliation(ctx context.Context, id uuid.UUID, seats []string) error {
	res := r.db.WithContext(ctx).
		Model(&Booking{ID: id}).
		Select("needs_reconciliation", "conflict_seats", "updated_at").
		Updates(&Booking{NeedsReconciliation: true, ConflictSeats: seats, UpdatedAt: time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to flag booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("booking", id.String())
	}
	return nil
}

func (r *repository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("booking", id.String())
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, query ListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	return r.paginate(db, query)
}

// ListNeedsReconciliation covers paid bookings that lost seats and paid
// bookings whose seat commit has not landed
func (r *repository) ListNeedsReconciliation(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{}).
		Where("status = ?", StatusPaid).
		Where("needs_reconciliation = ? OR seats_committed = ?", true, false)
	return r.paginate(db, query)
}

func (r *repository) paginate(db *gorm.DB, query ListQuery) ([]Booking, int64, error) {
	query.normalize()

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []Booking
	err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *repository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListUncommittedPaid(ctx context.Context, paidBefore time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND seats_committed = ? AND paid_at < ?", StatusPaid, false, paidBefore).
		Order("paid_at ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uncommitted bookings: %w", err)
	}
	return bookings, nil
}
