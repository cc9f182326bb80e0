package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clvmartin/boutique/internal/order/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
	// ErrConflict means the stored status no longer matched the expected
	// transition source when the write ran.
	ErrConflict = errors.New("order status conflict")
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

type CreateOrderRequest struct {
	UserEmail       string
	Items           []domain.Item
	DeliveryAddress string
}

// CreateOrder stamps a pending order. The stored total is recomputed
// here from the line items rather than trusted from the caller.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(req.UserEmail) == "" || len(req.Items) == 0 {
		return domain.Order{}, ErrInvalidInput
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("item %d: quantity must be positive: %w", i, ErrInvalidInput)
		}
		if item.Price < 0 {
			return domain.Order{}, fmt.Errorf("item %d: price cannot be negative: %w", i, ErrInvalidInput)
		}
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		UserEmail:       req.UserEmail,
		TotalPrice:      total.InexactFloat64(),
		Items:           req.Items,
		PaymentStatus:   domain.StatusPending,
		DeliveryAddress: req.DeliveryAddress,
	}

	return s.repo.Insert(ctx, order)
}

func (s *Service) Get(ctx context.Context, id, userEmail string) (domain.Order, error) {
	return s.repo.GetForUser(ctx, id, userEmail)
}

func (s *Service) ListByEmail(ctx context.Context, userEmail string) ([]domain.Order, error) {
	return s.repo.ListByEmail(ctx, userEmail)
}

// ListFailed returns orders whose charge may have landed without the
// matching status write. The reconciler sweeps these.
func (s *Service) ListFailed(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListByStatus(ctx, domain.StatusFailed)
}

func (s *Service) SetDeliveryAddress(ctx context.Context, id, userEmail, address string) error {
	if strings.TrimSpace(address) == "" {
		return ErrInvalidInput
	}
	return s.repo.SetDeliveryAddress(ctx, id, userEmail, address)
}

// RecordPaymentIntent pins the gateway intent to the order before the
// sheet is presented, so the reconciler can later ask the gateway who
// really got charged.
func (s *Service) RecordPaymentIntent(ctx context.Context, id, userEmail, intentID string) error {
	if strings.TrimSpace(intentID) == "" {
		return ErrInvalidInput
	}
	return s.repo.SetPaymentIntent(ctx, id, userEmail, intentID)
}

func (s *Service) MarkPaid(ctx context.Context, id, userEmail string) error {
	return s.transition(ctx, id, userEmail, domain.StatusPaid, "")
}

func (s *Service) MarkFailed(ctx context.Context, id, userEmail, reason string) error {
	return s.transition(ctx, id, userEmail, domain.StatusFailed, reason)
}

func (s *Service) transition(ctx context.Context, id, userEmail string, to domain.Status, reason string) error {
	order, err := s.repo.GetForUser(ctx, id, userEmail)
	if err != nil {
		return err
	}

	if !order.PaymentStatus.CanTransition(to) {
		return fmt.Errorf("cannot move order %s from %q to %q: %w",
			id, order.PaymentStatus, to, ErrConflict)
	}

	return s.repo.UpdateStatus(ctx, id, order.PaymentStatus, to, reason)
}

// Delete removes an order after an existence check scoped to the
// caller's own orders. Deleting someone else's order reports not found.
func (s *Service) Delete(ctx context.Context, id, userEmail string) error {
	if _, err := s.repo.GetForUser(ctx, id, userEmail); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, userEmail)
}
