package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seatline/pkg/metrics"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// omiseAPI narrows the Omise client to the two calls we make
type omiseAPI interface {
	CreateSource(sourceType string, amount int64, currency string) (*omise.Source, error)
	RetrieveCharge(chargeID string) (*omise.Charge, error)
}

type omiseClient struct {
	client *omise.Client
}

func (c omiseClient) CreateSource(sourceType string, amount int64, currency string) (*omise.Source, error) {
	src := &omise.Source{}
	err := c.client.Do(src, &operations.CreateSource{
		Type:     sourceType,
		Amount:   amount,
		Currency: currency,
	})
	return src, err
}

func (c omiseClient) RetrieveCharge(chargeID string) (*omise.Charge, error) {
	ch := &omise.Charge{}
	err := c.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID})
	return ch, err
}

// OmiseGateway uses an Omise source as the checkout handle and a charge as the payment
type OmiseGateway struct {
	publicKey  string
	sourceType string
	api        omiseAPI
}

func NewOmiseGateway(publicKey, secretKey, sourceType string) (*OmiseGateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create omise client: %w", err)
	}
	if sourceType == "" {
		sourceType = "promptpay"
	}
	return &OmiseGateway{publicKey: publicKey, sourceType: sourceType, api: omiseClient{client: client}}, nil
}

func (g *OmiseGateway) Provider() string {
	return ProviderOmise
}

func (g *OmiseGateway) CreateOrder(ctx context.Context, req OrderRequest) (order *Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveGateway(ProviderOmise, "create_order", start, err) }()

	if req.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	src, err := callWithContext(ctx, func() (*omise.Source, error) {
		return g.api.CreateSource(g.sourceType, req.AmountMinor, req.Currency)
	})
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:          src.ID,
		Provider:    ProviderOmise,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		CheckoutKey: g.publicKey,
	}, nil
}

// VerifyPayment retrieves the charge and requires it to be successful, made
// from our source and for the expected amount and currency
func (g *OmiseGateway) VerifyPayment(ctx context.Context, conf Confirmation) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGateway(ProviderOmise, "verify_payment", start, err) }()

	if conf.PaymentID == "" || conf.OrderID == "" {
		return ErrNotSettled
	}
	ch, err := callWithContext(ctx, func() (*omise.Charge, error) {
		return g.api.RetrieveCharge(conf.PaymentID)
	})
	if err != nil {
		return err
	}
	if ch.Status != omise.ChargeSuccessful {
		return fmt.Errorf("%w: charge status %s", ErrNotSettled, ch.Status)
	}
	if ch.Source == nil || ch.Source.ID != conf.OrderID {
		return fmt.Errorf("%w: charge %s was not paid from source %s", ErrPaymentMismatch, conf.PaymentID, conf.OrderID)
	}
	if ch.Amount != conf.AmountMinor || !strings.EqualFold(ch.Currency, conf.Currency) {
		return fmt.Errorf("%w: charged %d %s, expected %d %s", ErrPaymentMismatch, ch.Amount, ch.Currency, conf.AmountMinor, conf.Currency)
	}
	return nil
}
