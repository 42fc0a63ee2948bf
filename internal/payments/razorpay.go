package payments

import (
	"context"
	"fmt"
	"time"

	"seatline/pkg/metrics"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// orderAPI is the part of the Razorpay order resource we call
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	keyID  string
	secret string
	orders orderAPI
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, secret)
	return &RazorpayGateway{keyID: keyID, secret: secret, orders: client.Order}
}

func (g *RazorpayGateway) Provider() string {
	return ProviderRazorpay
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (order *Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveGateway(ProviderRazorpay, "create_order", start, err) }()

	if req.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	body, err := callWithContext(ctx, func() (map[string]interface{}, error) {
		return g.orders.Create(map[string]interface{}{
			"amount":   req.AmountMinor,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"notes":    map[string]interface{}{"booking_id": req.BookingID},
		}, nil)
	})
	if err != nil {
		return nil, err
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}
	return &Order{
		ID:          id,
		Provider:    ProviderRazorpay,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		CheckoutKey: g.keyID,
	}, nil
}

// VerifyPayment checks the checkout signature, an HMAC of order and payment id.
// The order was created for the booking amount, so a valid signature for the
// booking's own order id pins the amount and currency.
func (g *RazorpayGateway) VerifyPayment(ctx context.Context, conf Confirmation) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGateway(ProviderRazorpay, "verify_payment", start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if conf.OrderID == "" || conf.PaymentID == "" || conf.Signature == "" {
		return ErrSignatureInvalid
	}
	params := map[string]interface{}{
		"razorpay_order_id":   conf.OrderID,
		"razorpay_payment_id": conf.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, conf.Signature, g.secret) {
		return ErrSignatureInvalid
	}
	return nil
}
