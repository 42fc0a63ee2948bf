package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Service owns the booking record lifecycle: pending -> paid | cancelled
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// MarkPaid is idempotent for the same payment id. changed is false on a replay.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) (booking *Booking, changed bool, err error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*Booking, error)

	AttachOrder(ctx context.Context, id uuid.UUID, orderID string) error
	MarkSeatsCommitted(ctx context.Context, id uuid.UUID) error
	FlagReconciliation(ctx context.Context, id uuid.UUID, seats []string) error

	ListByUser(ctx context.Context, userID uuid.UUID, query ListQuery) (*PaginatedBookings, error)
	ListNeedsReconciliation(ctx context.Context, query ListQuery) (*PaginatedBookings, error)
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]Booking, error)

	// ListUncommittedPaid returns paid bookings whose seats are still not
	// committed olderThan after payment
	ListUncommittedPaid(ctx context.Context, olderThan time.Duration, limit int) ([]Booking, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Booking, error) {
	if err := validateSeats(params.Seats); err != nil {
		return nil, err
	}
	computed := SumSeats(params.Seats)
	if !params.Amount.Equal(computed) {
		return nil, &apperrors.AmountMismatchError{Claimed: params.Amount, Computed: computed}
	}

	ref, err := generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	currency := strings.ToUpper(params.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	provider := params.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	now := s.now()
	booking := &Booking{
		ID:              uuid.New(),
		BookingRef:      ref,
		EventID:         params.EventID,
		UserID:          params.BuyerID,
		Seats:           append([]SeatLine(nil), params.Seats...),
		Amount:          computed,
		Currency:        currency,
		PaymentProvider: provider,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func validateSeats(seats []SeatLine) error {
	if len(seats) == 0 {
		return apperrors.Validation("seats", "at least one seat must be selected")
	}
	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if strings.TrimSpace(seat.SeatNo) == "" {
			return apperrors.Validation("seats", "seat number is required")
		}
		if seat.Price.IsNegative() {
			return apperrors.Validation("seats", fmt.Sprintf("seat %s has a negative price", seat.SeatNo))
		}
		if !seat.Price.Equal(seat.Price.Round(amountScale)) {
			return apperrors.Validation("seats", fmt.Sprintf("seat %s price has more than %d decimal places", seat.SeatNo, amountScale))
		}
		if _, dup := seen[seat.SeatNo]; dup {
			return apperrors.Validation("seats", fmt.Sprintf("seat %s selected twice", seat.SeatNo))
		}
		seen[seat.SeatNo] = struct{}{}
	}
	return nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) (*Booking, bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, false, apperrors.Validation("payment_id", "payment id is required")
	}

	updated, err := s.repo.MarkPaid(ctx, id, paymentID, s.now())
	if err != nil {
		return nil, false, err
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if updated {
		return booking, true, nil
	}

	switch booking.Status {
	case StatusPaid:
		if booking.PaymentID != nil && *booking.PaymentID == paymentID {
			return booking, false, nil
		}
		return nil, false, apperrors.Conflict("booking %s is already paid with a different payment", id)
	case StatusCancelled:
		return nil, false, apperrors.Conflict("booking %s is cancelled", id)
	default:
		return nil, false, apperrors.Conflict("booking %s could not be marked paid", id)
	}
}

// Cancel is a no-op on an already cancelled booking
func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	if _, err := s.repo.Cancel(ctx, id, reason, s.now()); err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsPaid() {
		return nil, apperrors.Conflict("booking %s is paid and cannot be cancelled", id)
	}
	return booking, nil
}

func (s *service) AttachOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	return s.repo.SetOrderID(ctx, id, orderID)
}

func (s *service) MarkSeatsCommitted(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkSeatsCommitted(ctx, id)
}

func (s *service) FlagReconciliation(ctx context.Context, id uuid.UUID, seats []string) error {
	return s.repo.FlagReconciliation(ctx, id, seats)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, query ListQuery) (*PaginatedBookings, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return NewPaginatedBookings(items, total, query), nil
}

func (s *service) ListNeedsReconciliation(ctx context.Context, query ListQuery) (*PaginatedBookings, error) {
	items, total, err := s.repo.ListNeedsReconciliation(ctx, query)
	if err != nil {
		return nil, err
	}
	return NewPaginatedBookings(items, total, query), nil
}

func (s *service) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]Booking, error) {
	return s.repo.ListStalePending(ctx, s.now().Add(-olderThan), limit)
}

func (s *service) ListUncommittedPaid(ctx context.Context, olderThan time.Duration, limit int) ([]Booking, error) {
	return s.repo.ListUncommittedPaid(ctx, s.now().Add(-olderThan), limit)
}

// generateBookingReference returns SL-<date>-<6 random letters>
func generateBookingReference() (string, error) {
	timestamp := time.Now().UTC().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("SL-%s-%s", timestamp, string(randomPart)), nil
}
