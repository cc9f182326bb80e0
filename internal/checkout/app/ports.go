package app

import (
	"context"

	"github.com/clvmartin/boutique/internal/gateway/stripe"
)

type Gateway interface {
	CreateCustomer(ctx context.Context) (stripe.Customer, error)
	CreateEphemeralKey(ctx context.Context, customerID string) (stripe.EphemeralKey, error)
	CreatePaymentIntent(ctx context.Context, params stripe.IntentParams) (stripe.PaymentIntent, error)
}
