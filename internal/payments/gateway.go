package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seatline/internal/shared/config"

	"github.com/shopspring/decimal"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderOmise    = "omise"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrSignatureInvalid = errors.New("payment signature does not match")
	ErrNotSettled       = errors.New("payment is not settled")
	ErrPaymentMismatch  = errors.New("payment does not match the order")
)

// OrderRequest sizes a payment order for one booking
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	BookingID   string
}

// Order is the checkout handle returned to the buyer
type Order struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt,omitempty"`
	// CheckoutKey is the public key the client checkout widget needs
	CheckoutKey string `json:"key,omitempty"`
}

// Confirmation is the success callback of a client checkout together with
// what the booking expects to have been paid
type Confirmation struct {
	OrderID     string
	PaymentID   string
	Signature   string
	AmountMinor int64
	Currency    string
}

// Gateway creates payment orders and verifies confirmations.
// Both calls block on the network and honour ctx.
type Gateway interface {
	Provider() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifyPayment(ctx context.Context, conf Confirmation) error
}

// ToMinorUnits converts a major unit amount to paise/cents, rounding half away from zero
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Receipt is the gateway receipt label for a booking
func Receipt(bookingID string) string {
	return "rcpt_" + bookingID
}

// NewGateway picks the configured provider
func NewGateway(cfg config.PaymentConfig) (Gateway, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderRazorpay:
		return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpaySecret), nil
	case ProviderOmise:
		return NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.OmiseSourceType)
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

// callWithContext runs a blocking SDK call and gives up when ctx ends.
// The SDK call itself keeps running in the background until it returns.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}
