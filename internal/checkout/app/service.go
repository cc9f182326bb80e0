package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/clvmartin/boutique/internal/gateway/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

// Artifacts is everything the mobile client needs to drive the
// on-device payment sheet.
type Artifacts struct {
	PaymentIntentSecret string
	PaymentIntentID     string
	EphemeralKeySecret  string
	CustomerID          string
}

type Service struct {
	gateway  Gateway
	currency string
}

func NewService(gateway Gateway, currency string) *Service {
	if currency == "" {
		currency = "eur"
	}
	return &Service{gateway: gateway, currency: currency}
}

// Checkout validates the price, converts it to minor currency units and
// assembles the three gateway artifacts in sequence: customer, then an
// ephemeral key scoped to it, then the payment intent.
func (s *Service) Checkout(ctx context.Context, email string, price float64) (Artifacts, error) {
	amount, err := AmountMinorUnits(price)
	if err != nil {
		return Artifacts{}, err
	}

	customer, err := s.gateway.CreateCustomer(ctx)
	if err != nil {
		return Artifacts{}, err
	}

	key, err := s.gateway.CreateEphemeralKey(ctx, customer.ID)
	if err != nil {
		return Artifacts{}, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, stripe.IntentParams{
		Amount:       amount,
		Currency:     s.currency,
		CustomerID:   customer.ID,
		ReceiptEmail: email,
		Description:  fmt.Sprintf("Commande boutique pour %s", email),
		Metadata: map[string]string{
			"user_email": email,
		},
		// One fresh key per checkout call: a network-level retry of the
		// same request cannot mint a second intent.
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{
		PaymentIntentSecret: intent.ClientSecret,
		PaymentIntentID:     intent.ID,
		EphemeralKeySecret:  key.Secret,
		CustomerID:          customer.ID,
	}, nil
}

// AmountMinorUnits converts a major-unit price to integer minor units,
// rounding at the cent boundary. Non-finite and non-positive prices are
// rejected before any gateway call is made.
func AmountMinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}

	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart(), nil
}
