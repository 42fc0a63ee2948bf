package reservations

import (
	"context"
	"errors"
	"time"

	"seatline/internal/authz"
	"seatline/internal/bookings"
	"seatline/internal/events"
	"seatline/internal/notifications"
	"seatline/internal/payments"
	"seatline/internal/seatmaps"
	"seatline/internal/shared/apperrors"
	"seatline/pkg/logger"
	"seatline/pkg/metrics"

	"github.com/google/uuid"
)

// SeatMaps is the part of the seat map service the engine needs
type SeatMaps interface {
	LoadForCheckout(ctx context.Context, eventID uuid.UUID) (*seatmaps.SeatMap, error)
	MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*seatmaps.CommitResult, error)
}

type EventLookup interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

// Config tunes gateway calls made by the engine
type Config struct {
	Currency       string
	GatewayTimeout time.Duration
}

const (
	reasonPaymentInit = "payment_init_failed"
	reasonExpired     = "expired"
	reasonBuyer       = "cancelled_by_buyer"
	reasonAdmin       = "cancelled_by_admin"
)

// Engine coordinates seat maps, booking records and the payment gateway.
// Seats are never locked before payment. The only serialization point is
// the conditional seat commit after the booking is marked paid.
type Engine struct {
	seatMaps  SeatMaps
	bookings  bookings.Service
	events    EventLookup
	gateway   payments.Gateway
	publisher notifications.Publisher
	guard     *authz.Guard
	config    Config
	logger    *logger.Logger
}

func NewEngine(
	seatMaps SeatMaps,
	bookingService bookings.Service,
	eventLookup EventLookup,
	gateway payments.Gateway,
	publisher notifications.Publisher,
	guard *authz.Guard,
	config Config,
) *Engine {
	if config.Currency == "" {
		config.Currency = bookings.DefaultCurrency
	}
	if config.GatewayTimeout <= 0 {
		config.GatewayTimeout = 10 * time.Second
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	return &Engine{
		seatMaps:  seatMaps,
		bookings:  bookingService,
		events:    eventLookup,
		gateway:   gateway,
		publisher: publisher,
		guard:     guard,
		config:    config,
		logger:    logger.GetDefault(),
	}
}

// Initiate prices the selection from the stored seat map, records a pending
// booking and opens a payment order for it. The seat map is not written.
func (e *Engine) Initiate(ctx context.Context, caller authz.Identity, eventID uuid.UUID, req InitiateBookingRequest) (*InitiateResponse, error) {
	if err := e.guard.CanBook(caller); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, apperrors.Validation("amount", "amount is required")
	}
	buyerID, err := buyerFromIdentity(caller)
	if err != nil {
		return nil, err
	}

	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished {
		return nil, apperrors.Conflict("event %s is not open for booking", eventID)
	}

	sm, err := e.seatMaps.LoadForCheckout(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seats, _, err := seatmaps.PriceSeats(sm.Layout, req.Seats)
	if err != nil {
		metrics.TrackTransition("initiate", "rejected")
		return nil, err
	}

	lines := make([]bookings.SeatLine, len(seats))
	for i, s := range seats {
		lines[i] = bookings.SeatLine{SeatNo: s.Data.SeatNo, Price: s.Data.Price}
	}
	booking, err := e.bookings.Create(ctx, bookings.CreateParams{
		EventID:  eventID,
		BuyerID:  buyerID,
		Seats:    lines,
		Amount:   *req.Amount,
		Currency: e.config.Currency,
		Provider: e.gateway.Provider(),
	})
	if err != nil {
		metrics.TrackTransition("initiate", "rejected")
		return nil, err
	}

	order, err := e.openOrder(ctx, booking)
	if err != nil {
		return nil, err
	}

	e.logger.LogBookingInitiated(ctx, booking.ID.String(), eventID.String(), caller.SubjectID, booking.SeatNos())
	e.publish(ctx, bookingEvent(notifications.EventBookingInitiated, booking))
	metrics.TrackTransition("initiate", "success")
	return &InitiateResponse{Booking: booking, Order: order}, nil
}

// openOrder asks the gateway for a checkout handle. On failure the booking is
// cancelled so it can never be confirmed.
func (e *Engine) openOrder(ctx context.Context, booking *bookings.Booking) (*payments.Order, error) {
	octx, cancel := context.WithTimeout(ctx, e.config.GatewayTimeout)
	defer cancel()

	bookingID := booking.ID.String()
	order, err := e.gateway.CreateOrder(octx, payments.OrderRequest{
		AmountMinor: payments.ToMinorUnits(booking.Amount),
		Currency:    booking.Currency,
		Receipt:     payments.Receipt(bookingID),
		BookingID:   bookingID,
	})
	if err == nil {
		err = e.bookings.AttachOrder(ctx, booking.ID, order.ID)
	}
	if err != nil {
		e.logger.LogPaymentError(ctx, e.gateway.Provider(), bookingID, err)
		metrics.TrackTransition("initiate", "payment_init_failed")

		// The request context may already be done; the cancel write must still land.
		cctx, ccancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer ccancel()
		if cancelled, cerr := e.bookings.Cancel(cctx, booking.ID, reasonPaymentInit); cerr != nil {
			e.logger.ErrorContext(ctx, "failed to cancel booking after payment init failure", "booking_id", bookingID, "error", cerr)
		} else {
			e.logger.LogBookingCancelled(ctx, bookingID, booking.EventID.String(), reasonPaymentInit)
			e.publish(cctx, bookingEvent(notifications.EventBookingCancelled, cancelled))
		}
		return nil, &apperrors.PaymentInitError{Provider: e.gateway.Provider(), Cause: err}
	}

	booking.OrderID = &order.ID
	return order, nil
}

// Confirm verifies the payment, marks the booking paid and then commits
// exactly the booking's own seats. A seat lost to an earlier paid booking
// leaves this booking paid and flagged for reconciliation.
func (e *Engine) Confirm(ctx context.Context, caller authz.Identity, bookingID uuid.UUID, req ConfirmBookingRequest) (*ConfirmResponse, error) {
	booking, err := e.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.guard.CanAccessBooking(caller, booking.BuyerID()); err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		metrics.TrackTransition("confirm", "rejected")
		return nil, apperrors.Conflict("booking %s is cancelled", bookingID)
	}
	if len(req.Seats) > 0 && !sameSeats(req.Seats, booking.SeatNos()) {
		return nil, apperrors.Validation("seats", "seats do not match the booking")
	}

	replay := booking.IsPaid() && booking.PaymentID != nil && *booking.PaymentID == req.PaymentID
	if !replay && booking.IsPending() {
		if err := e.verify(ctx, booking, req); err != nil {
			return nil, err
		}
	}

	paid, changed, err := e.bookings.MarkPaid(ctx, bookingID, req.PaymentID)
	if err != nil {
		metrics.TrackTransition("confirm", "rejected")
		return nil, err
	}
	if changed {
		e.logger.LogBookingConfirmed(ctx, bookingID.String(), paid.EventID.String(), req.PaymentID, paid.SeatNos())
		e.publish(ctx, bookingEvent(notifications.EventBookingPaid, paid))
	}

	commit, err := e.commitSeats(ctx, paid, req.PaymentID)
	if err != nil {
		// A seat conflict still reports the paid booking and the seats it did get
		if _, ok := apperrors.AsSeatConflict(err); ok {
			return &ConfirmResponse{Booking: paid, Commit: commit}, err
		}
		return nil, err
	}

	if changed {
		metrics.TrackTransition("confirm", "success")
	} else {
		metrics.TrackTransition("confirm", "replay")
	}
	return &ConfirmResponse{Booking: paid, Commit: commit}, nil
}

func (e *Engine) verify(ctx context.Context, booking *bookings.Booking, req ConfirmBookingRequest) error {
	if booking.OrderID == nil {
		return apperrors.Conflict("booking %s has no payment order", booking.ID)
	}
	if req.OrderID != "" && req.OrderID != *booking.OrderID {
		return apperrors.Validation("order_id", "order does not belong to this booking")
	}

	vctx, cancel := context.WithTimeout(ctx, e.config.GatewayTimeout)
	defer cancel()
	err := e.gateway.VerifyPayment(vctx, payments.Confirmation{
		OrderID:     *booking.OrderID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		AmountMinor: payments.ToMinorUnits(booking.Amount),
		Currency:    booking.Currency,
	})
	if err != nil {
		e.logger.LogPaymentError(ctx, e.gateway.Provider(), booking.ID.String(), err)
		metrics.TrackTransition("confirm", "verification_failed")
		return &apperrors.PaymentVerificationError{Provider: e.gateway.Provider(), Cause: err}
	}
	return nil
}

// commitSeats runs the store-level conditional update for a paid booking.
// It is safe to call again for the same booking. On a seat conflict the
// result is returned along with the SeatConflictError.
func (e *Engine) commitSeats(ctx context.Context, paid *bookings.Booking, paymentID string) (*seatmaps.CommitResult, error) {
	bookingID := paid.ID.String()
	if paid.NeedsReconciliation {
		return flaggedResult(paid), &apperrors.SeatConflictError{BookingID: bookingID, EventID: paid.EventID.String(), Seats: paid.ConflictSeats}
	}
	if paid.SeatsCommitted {
		return &seatmaps.CommitResult{Booked: paid.SeatNos()}, nil
	}

	result, err := e.seatMaps.MarkSeatsBooked(ctx, paid.EventID, paid.SeatNos(), bookingID)
	if err != nil {
		// Booking stays paid with seats uncommitted. A replayed confirm or the
		// next RecommitPaid sweep retries the commit.
		e.logger.ErrorContext(ctx, "seat commit failed after payment",
			"booking_id", bookingID,
			"event_id", paid.EventID.String(),
			"error", err,
		)
		metrics.TrackTransition("confirm", "commit_failed")
		return nil, err
	}

	if err := e.bookings.MarkSeatsCommitted(ctx, paid.ID); err != nil {
		return nil, err
	}
	paid.SeatsCommitted = true

	if result.HasConflict() {
		conflicting := result.Conflicting()
		if err := e.bookings.FlagReconciliation(ctx, paid.ID, conflicting); err != nil {
			return nil, err
		}
		paid.NeedsReconciliation = true
		paid.ConflictSeats = conflicting

		e.logger.LogSeatConflict(ctx, bookingID, paid.EventID.String(), paymentID, conflicting)
		ev := bookingEvent(notifications.EventSeatConflict, paid)
		ev.ConflictSeats = conflicting
		e.publish(ctx, ev)
		metrics.TrackSeatConflict(paid.EventID.String())
		metrics.TrackTransition("confirm", "seat_conflict")

		return result, &apperrors.SeatConflictError{BookingID: bookingID, EventID: paid.EventID.String(), Seats: conflicting}
	}
	return result, nil
}

// flaggedResult rebuilds the commit outcome of a booking already flagged for reconciliation
func flaggedResult(b *bookings.Booking) *seatmaps.CommitResult {
	lost := make(map[string]struct{}, len(b.ConflictSeats))
	for _, s := range b.ConflictSeats {
		lost[s] = struct{}{}
	}
	result := &seatmaps.CommitResult{Booked: []string{}, AlreadyBooked: append([]string(nil), b.ConflictSeats...)}
	for _, s := range b.SeatNos() {
		if _, ok := lost[s]; !ok {
			result.Booked = append(result.Booked, s)
		}
	}
	return result
}

// RecommitPaid retries the seat commit of up to limit paid bookings whose
// commit has not landed olderThan after payment. A commit that hits a seat
// conflict flags the booking and counts as settled.
func (e *Engine) RecommitPaid(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stuck, err := e.bookings.ListUncommittedPaid(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for i := range stuck {
		b := &stuck[i]
		paymentID := ""
		if b.PaymentID != nil {
			paymentID = *b.PaymentID
		}
		_, err := e.commitSeats(ctx, b, paymentID)
		if err != nil {
			if _, ok := apperrors.AsSeatConflict(err); ok {
				settled++
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return settled, err
			}
			e.logger.WarnContext(ctx, "seat recommit failed", "booking_id", b.ID.String(), "error", err)
			continue
		}
		settled++
		e.logger.InfoContext(ctx, "seats recommitted for paid booking", "booking_id", b.ID.String(), "event_id", b.EventID.String())
	}
	metrics.TrackRecommitted(settled)
	return settled, nil
}

// Cancel lets the buyer or an admin abandon a pending booking
func (e *Engine) Cancel(ctx context.Context, caller authz.Identity, bookingID uuid.UUID) (*bookings.Booking, error) {
	booking, err := e.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.guard.CanAccessBooking(caller, booking.BuyerID()); err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return booking, nil
	}

	reason := reasonBuyer
	if caller.IsAdmin() {
		reason = reasonAdmin
	}
	cancelled, err := e.bookings.Cancel(ctx, bookingID, reason)
	if err != nil {
		return nil, err
	}
	e.logger.LogBookingCancelled(ctx, bookingID.String(), cancelled.EventID.String(), reason)
	e.publish(ctx, bookingEvent(notifications.EventBookingCancelled, cancelled))
	metrics.TrackTransition("cancel", "success")
	return cancelled, nil
}

// ExpireStale cancels up to limit pending bookings older than ttl and reports how many it cancelled
func (e *Engine) ExpireStale(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	stale, err := e.bookings.ListStalePending(ctx, ttl, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range stale {
		b, err := e.bookings.Cancel(ctx, stale[i].ID, reasonExpired)
		if err != nil {
			// Paid between the listing and the cancel
			if apperrors.IsConflict(err) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return cancelled, err
			}
			e.logger.WarnContext(ctx, "failed to expire booking", "booking_id", stale[i].ID.String(), "error", err)
			continue
		}
		cancelled++
		e.logger.LogBookingCancelled(ctx, b.ID.String(), b.EventID.String(), reasonExpired)
		e.publish(ctx, bookingEvent(notifications.EventBookingCancelled, b))
	}
	metrics.TrackReaperCancelled(cancelled)
	return cancelled, nil
}

func (e *Engine) Get(ctx context.Context, caller authz.Identity, bookingID uuid.UUID) (*bookings.Booking, error) {
	booking, err := e.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.guard.CanAccessBooking(caller, booking.BuyerID()); err != nil {
		return nil, err
	}
	return booking, nil
}

func (e *Engine) ListMine(ctx context.Context, caller authz.Identity, query bookings.ListQuery) (*bookings.PaginatedBookings, error) {
	if caller.IsGuest() {
		return nil, apperrors.Unauthorized("sign in to list your bookings")
	}
	userID, err := uuid.Parse(caller.SubjectID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid subject")
	}
	return e.bookings.ListByUser(ctx, userID, query)
}

// ListReconciliation lists paid bookings that lost seats at commit or whose
// seat commit has not landed yet
func (e *Engine) ListReconciliation(ctx context.Context, caller authz.Identity, query bookings.ListQuery) (*bookings.PaginatedBookings, error) {
	if err := e.guard.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return e.bookings.ListNeedsReconciliation(ctx, query)
}

func (e *Engine) publish(ctx context.Context, ev *notifications.BookingEvent) {
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "failed to publish booking event",
			"type", string(ev.Type),
			"booking_id", ev.BookingID,
			"error", err,
		)
	}
}

func bookingEvent(eventType notifications.EventType, b *bookings.Booking) *notifications.BookingEvent {
	ev := notifications.NewBookingEvent(eventType, b.ID.String(), b.EventID.String())
	ev.BuyerID = b.BuyerID()
	ev.Seats = b.SeatNos()
	ev.Amount = b.Amount
	ev.Currency = b.Currency
	ev.Provider = b.PaymentProvider
	ev.Reason = b.CancelReason
	if b.OrderID != nil {
		ev.OrderID = *b.OrderID
	}
	if b.PaymentID != nil {
		ev.PaymentID = *b.PaymentID
	}
	return ev
}

func buyerFromIdentity(caller authz.Identity) (*uuid.UUID, error) {
	if caller.IsGuest() {
		return nil, nil
	}
	id, err := uuid.Parse(caller.SubjectID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid subject")
	}
	return &id, nil
}

// sameSeats compares two seat lists as sets
func sameSeats(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, s := range a {
		set[s]++
	}
	for _, s := range b {
		if set[s] == 0 {
			return false
		}
		set[s]--
	}
	return true
}
