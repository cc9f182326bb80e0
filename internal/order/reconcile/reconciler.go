package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/clvmartin/boutique/internal/gateway/stripe"
	"github.com/clvmartin/boutique/internal/order/domain"
	"github.com/clvmartin/boutique/pkg/retry"
)

type Orders interface {
	ListFailed(ctx context.Context) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id, userEmail string) error
}

type Gateway interface {
	GetPaymentIntent(ctx context.Context, id string) (stripe.PaymentIntent, error)
}

// Reconciler settles orders stuck in the failed state: the sheet
// confirmed the charge but the status write never landed. Each sweep
// asks the gateway for the authoritative intent state and flips the
// order to paid when the charge really went through.
type Reconciler struct {
	orders   Orders
	gateway  Gateway
	log      *slog.Logger
	interval time.Duration
	policy   retry.Policy
}

func New(orders Orders, gateway Gateway, log *slog.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{
		orders:   orders,
		gateway:  gateway,
		log:      log,
		interval: interval,
		policy:   retry.DefaultPolicy(),
	}
}

// Run sweeps on a ticker until ctx ends.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.log.Error("reconcile sweep failed", slog.Any("err", err))
			}
		}
	}
}

func (r *Reconciler) Sweep(ctx context.Context) error {
	orders, err := r.orders.ListFailed(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if order.PaymentIntentID == "" {
			// Nothing authoritative to check against; leave it alone.
			continue
		}

		var intent stripe.PaymentIntent
		err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
			var err error
			intent, err = r.gateway.GetPaymentIntent(ctx, order.PaymentIntentID)
			return err
		})
		if err != nil {
			r.log.Warn("could not read payment intent",
				slog.String("order_id", order.ID),
				slog.String("intent_id", order.PaymentIntentID),
				slog.Any("err", err))
			continue
		}

		if intent.Status != stripe.IntentSucceeded {
			continue
		}

		if err := r.orders.MarkPaid(ctx, order.ID, order.UserEmail); err != nil {
			r.log.Warn("could not settle order",
				slog.String("order_id", order.ID),
				slog.Any("err", err))
			continue
		}

		r.log.Info("order settled after lost status write",
			slog.String("order_id", order.ID),
			slog.String("intent_id", order.PaymentIntentID))
	}

	return nil
}
