package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input the caller can fix.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError reports an absent event, booking, seat map or user.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}

// UnauthorizedError is returned when an operation needs an identity and the caller has none.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

// AmountMismatchError means the client total disagrees with the server-computed total.
type AmountMismatchError struct {
	Claimed  decimal.Decimal
	Computed decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: claimed %s, computed %s", e.Claimed.StringFixed(2), e.Computed.StringFixed(2))
}

// ConflictError reports a booking state machine violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Message
}

type DuplicateSeatError struct {
	SeatNo string
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("duplicate seat number %q in layout", e.SeatNo)
}

// SeatConflictError is a partial commit failure. The booking stays paid and
// the contested seats need manual reconciliation.
type SeatConflictError struct {
	BookingID string
	EventID   string
	Seats     []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict on booking %s: seats %s already taken", e.BookingID, strings.Join(e.Seats, ", "))
}

// UserMessage is the text shown to a buyer whose payment settled on a taken seat.
func (e *SeatConflictError) UserMessage() string {
	return fmt.Sprintf("Your payment succeeded but seat(s) %s were already taken. Please contact support with booking %s.",
		strings.Join(e.Seats, ", "), e.BookingID)
}

// PaymentInitError wraps a gateway failure while creating an order.
type PaymentInitError struct {
	Provider string
	Cause    error
}

func (e *PaymentInitError) Error() string {
	return fmt.Sprintf("payment order via %s failed: %v", e.Provider, e.Cause)
}

func (e *PaymentInitError) Unwrap() error { return e.Cause }

// PaymentVerificationError means a confirmation signal did not match a settled payment.
type PaymentVerificationError struct {
	Provider string
	Cause    error
}

func (e *PaymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification via %s failed: %v", e.Provider, e.Cause)
}

func (e *PaymentVerificationError) Unwrap() error { return e.Cause }

// Constructors

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

func Unauthorized(reason string) error {
	return &UnauthorizedError{Reason: reason}
}

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// Matchers

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsAmountMismatch(err error) bool {
	var target *AmountMismatchError
	return errors.As(err, &target)
}

func IsDuplicateSeat(err error) bool {
	var target *DuplicateSeatError
	return errors.As(err, &target)
}

// AsSeatConflict returns the seat conflict carried by err, if any.
func AsSeatConflict(err error) (*SeatConflictError, bool) {
	var target *SeatConflictError
	ok := errors.As(err, &target)
	return target, ok
}

func IsPaymentInit(err error) bool {
	var target *PaymentInitError
	return errors.As(err, &target)
}

// HTTPStatus maps an error from the taxonomy to a response code.
func HTTPStatus(err error) int {
	var (
		validation   *ValidationError
		duplicate    *DuplicateSeatError
		notFound     *NotFoundError
		forbidden    *ForbiddenError
		unauthorized *UnauthorizedError
		mismatch     *AmountMismatchError
		conflict     *ConflictError
		seatConflict *SeatConflictError
		paymentInit  *PaymentInitError
		verification *PaymentVerificationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &duplicate):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict), errors.As(err, &seatConflict):
		return http.StatusConflict
	case errors.As(err, &verification):
		return http.StatusPaymentRequired
	case errors.As(err, &paymentInit):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the buyer-facing text for err.
func UserMessage(err error) string {
	var (
		seatConflict *SeatConflictError
		verification *PaymentVerificationError
		paymentInit  *PaymentInitError
	)
	switch {
	case errors.As(err, &seatConflict):
		return seatConflict.UserMessage()
	case errors.As(err, &verification):
		return "Payment could not be verified, no charge applied"
	case errors.As(err, &paymentInit):
		return "Could not start payment, please try again"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out, please try again"
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
