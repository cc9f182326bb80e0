package app

import (
	"context"

	"github.com/clvmartin/boutique/internal/order/domain"
)

type OrderRepo interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	GetForUser(ctx context.Context, id, userEmail string) (domain.Order, error)
	ListByEmail(ctx context.Context, userEmail string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	// UpdateStatus flips payment_status only when the stored value still
	// equals from, so two racing writers cannot both win.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, failureReason string) error
	SetDeliveryAddress(ctx context.Context, id, userEmail, address string) error
	SetPaymentIntent(ctx context.Context, id, userEmail, intentID string) error
	Delete(ctx context.Context, id, userEmail string) error
}
