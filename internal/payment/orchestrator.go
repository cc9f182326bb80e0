// Package payment drives the on-device payment sheet from the checkout
// artifacts and settles the order afterwards.
package payment

import (
	"context"
	"errors"
	"log/slog"

	checkoutapp "github.com/clvmartin/boutique/internal/checkout/app"
	"github.com/clvmartin/boutique/pkg/retry"
)

// ErrPaymentFailed is the single user-facing failure for the whole
// flow; the underlying cause stays in the logs.
var ErrPaymentFailed = errors.New("payment failed")

type SheetConfig struct {
	ClientSecret string
	EphemeralKey string
	CustomerID   string
	MerchantName string
	ReturnURL    string
}

// Sheet is the gateway-provided payment UI on the device.
type Sheet interface {
	Init(ctx context.Context, cfg SheetConfig) error
	// Present blocks until the user completes, cancels, or the sheet
	// errors.
	Present(ctx context.Context) error
}

type Orders interface {
	RecordPaymentIntent(ctx context.Context, id, userEmail, intentID string) error
	MarkPaid(ctx context.Context, id, userEmail string) error
	MarkFailed(ctx context.Context, id, userEmail, reason string) error
}

type Orchestrator struct {
	sheet  Sheet
	orders Orders
	log    *slog.Logger

	merchantName string
	returnURL    string
	policy       retry.Policy
}

func NewOrchestrator(sheet Sheet, orders Orders, log *slog.Logger, merchantName, returnURL string) *Orchestrator {
	return &Orchestrator{
		sheet:        sheet,
		orders:       orders,
		log:          log,
		merchantName: merchantName,
		returnURL:    returnURL,
		policy:       retry.DefaultPolicy(),
	}
}

// Pay runs the payment sequence for an order: pin the intent to the
// order, initialize and present the sheet, then flip the order to paid.
// When the sheet confirmed the charge but the paid write keeps failing,
// the order is marked failed so the reconciler can settle it against
// the gateway later.
func (o *Orchestrator) Pay(ctx context.Context, orderID, userEmail string, artifacts checkoutapp.Artifacts) error {
	if err := o.orders.RecordPaymentIntent(ctx, orderID, userEmail, artifacts.PaymentIntentID); err != nil {
		o.log.Error("could not record payment intent",
			slog.String("order_id", orderID), slog.Any("err", err))
		return ErrPaymentFailed
	}

	cfg := SheetConfig{
		ClientSecret: artifacts.PaymentIntentSecret,
		EphemeralKey: artifacts.EphemeralKeySecret,
		CustomerID:   artifacts.CustomerID,
		MerchantName: o.merchantName,
		ReturnURL:    o.returnURL,
	}
	if err := o.sheet.Init(ctx, cfg); err != nil {
		o.log.Error("payment sheet init failed",
			slog.String("order_id", orderID), slog.Any("err", err))
		return ErrPaymentFailed
	}

	if err := o.sheet.Present(ctx); err != nil {
		// Cancelled, declined or errored: the order stays pending and
		// no status write happens.
		o.log.Info("payment sheet not completed",
			slog.String("order_id", orderID), slog.Any("err", err))
		return ErrPaymentFailed
	}

	err := retry.Do(ctx, o.policy, func(ctx context.Context) error {
		return o.orders.MarkPaid(ctx, orderID, userEmail)
	})
	if err != nil {
		// The charge went through but the write did not. Park the order
		// in failed so the reconciler settles it from the gateway's
		// authoritative record.
		o.log.Error("paid write lost after confirmed charge",
			slog.String("order_id", orderID),
			slog.String("intent_id", artifacts.PaymentIntentID),
			slog.Any("err", err))
		if failErr := o.orders.MarkFailed(ctx, orderID, userEmail, "paid write lost: "+err.Error()); failErr != nil {
			o.log.Error("could not mark order failed",
				slog.String("order_id", orderID), slog.Any("err", failErr))
		}
		return ErrPaymentFailed
	}

	return nil
}
