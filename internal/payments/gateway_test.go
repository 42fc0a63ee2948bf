package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"seatline/internal/shared/config"

	"github.com/omise/omise-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	got   map[string]interface{}
	resp  map[string]interface{}
	err   error
	delay time.Duration
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.resp, f.err
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(20000), ToMinorUnits(decimal.NewFromInt(200)))
	assert.Equal(t, int64(35051), ToMinorUnits(decimal.RequireFromString("350.505")))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, "rcpt_abc", Receipt("abc"))
}

func TestRazorpayCreateOrder(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{"id": "order_123", "status": "created"}}
	gw := &RazorpayGateway{keyID: "rzp_test", secret: "s3cret", orders: orders}

	order, err := gw.CreateOrder(context.Background(), OrderRequest{AmountMinor: 20000, Currency: "INR", Receipt: "rcpt_b1", BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, "rzp_test", order.CheckoutKey)
	assert.Equal(t, int64(20000), orders.got["amount"])
	assert.Equal(t, "INR", orders.got["currency"])
	assert.Equal(t, "rcpt_b1", orders.got["receipt"])
}

func TestRazorpayCreateOrder_Failures(t *testing.T) {
	t.Run("non positive amount", func(t *testing.T) {
		gw := &RazorpayGateway{orders: &fakeOrders{}}
		_, err := gw.CreateOrder(context.Background(), OrderRequest{AmountMinor: 0, Currency: "INR"})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("sdk error", func(t *testing.T) {
		gw := &RazorpayGateway{orders: &fakeOrders{err: errors.New("bad request")}}
		_, err := gw.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100, Currency: "INR"})
		assert.EqualError(t, err, "bad request")
	})

	t.Run("missing id", func(t *testing.T) {
		gw := &RazorpayGateway{orders: &fakeOrders{resp: map[string]interface{}{}}}
		_, err := gw.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100, Currency: "INR"})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		gw := &RazorpayGateway{orders: &fakeOrders{delay: 200 * time.Millisecond, resp: map[string]interface{}{"id": "late"}}}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := gw.CreateOrder(ctx, OrderRequest{AmountMinor: 100, Currency: "INR"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRazorpayVerifyPayment(t *testing.T) {
	gw := &RazorpayGateway{secret: "s3cret"}
	ctx := context.Background()

	good := Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: sign("s3cret", "order_1", "pay_1")}
	assert.NoError(t, gw.VerifyPayment(ctx, good))

	tampered := good
	tampered.PaymentID = "pay_2"
	assert.ErrorIs(t, gw.VerifyPayment(ctx, tampered), ErrSignatureInvalid)

	wrongKey := good
	wrongKey.Signature = sign("other", "order_1", "pay_1")
	assert.ErrorIs(t, gw.VerifyPayment(ctx, wrongKey), ErrSignatureInvalid)

	assert.ErrorIs(t, gw.VerifyPayment(ctx, Confirmation{OrderID: "order_1", PaymentID: "pay_1"}), ErrSignatureInvalid)
}

type fakeOmise struct {
	source *omise.Source
	charge *omise.Charge
	err    error
}

func (f *fakeOmise) CreateSource(sourceType string, amount int64, currency string) (*omise.Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	src := *f.source
	src.Type = sourceType
	src.Amount = amount
	src.Currency = currency
	return &src, nil
}

func (f *fakeOmise) RetrieveCharge(string) (*omise.Charge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.charge, nil
}

func TestOmiseCreateOrder(t *testing.T) {
	src := &omise.Source{}
	src.ID = "src_test_1"
	gw := &OmiseGateway{publicKey: "pkey_test", sourceType: "promptpay", api: &fakeOmise{source: src}}

	order, err := gw.CreateOrder(context.Background(), OrderRequest{AmountMinor: 5000, Currency: "THB", Receipt: "rcpt_b1"})
	require.NoError(t, err)
	assert.Equal(t, "src_test_1", order.ID)
	assert.Equal(t, ProviderOmise, order.Provider)
	assert.Equal(t, "pkey_test", order.CheckoutKey)
}

func TestOmiseVerifyPayment(t *testing.T) {
	src := &omise.Source{}
	src.ID = "src_1"
	expected := Confirmation{OrderID: "src_1", PaymentID: "chrg_1", AmountMinor: 5000, Currency: "THB"}
	ctx := context.Background()

	tests := []struct {
		name   string
		charge *omise.Charge
		conf   Confirmation
		want   error
	}{
		{
			name:   "matching charge",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Source: src, Amount: 5000, Currency: "thb"},
			conf:   expected,
		},
		{
			name:   "charge from another source",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Source: src, Amount: 5000, Currency: "thb"},
			conf:   Confirmation{OrderID: "src_other", PaymentID: "chrg_1", AmountMinor: 5000, Currency: "THB"},
			want:   ErrPaymentMismatch,
		},
		{
			name:   "charge without a source",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Amount: 5000, Currency: "thb"},
			conf:   expected,
			want:   ErrPaymentMismatch,
		},
		{
			name:   "wrong amount",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Source: src, Amount: 100, Currency: "thb"},
			conf:   expected,
			want:   ErrPaymentMismatch,
		},
		{
			name:   "wrong currency",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Source: src, Amount: 5000, Currency: "usd"},
			conf:   expected,
			want:   ErrPaymentMismatch,
		},
		{
			name:   "pending charge",
			charge: &omise.Charge{Status: omise.ChargePending, Source: src, Amount: 5000, Currency: "thb"},
			conf:   expected,
			want:   ErrNotSettled,
		},
		{
			name:   "no order id",
			charge: &omise.Charge{Status: omise.ChargeSuccessful, Source: src, Amount: 5000, Currency: "thb"},
			conf:   Confirmation{PaymentID: "chrg_1", AmountMinor: 5000, Currency: "THB"},
			want:   ErrNotSettled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &OmiseGateway{api: &fakeOmise{charge: tt.charge}}
			err := gw.VerifyPayment(ctx, tt.conf)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(config.PaymentConfig{Provider: "razorpay", RazorpayKeyID: "k", RazorpaySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, ProviderRazorpay, gw.Provider())

	_, err = NewGateway(config.PaymentConfig{Provider: "paypal"})
	assert.Error(t, err)
}
