package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clvmartin/boutique/internal/order/app"
	"github.com/clvmartin/boutique/internal/order/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// orderRow is the typed shape of an orders row. Scanning goes through
// it so a malformed row fails here, at the boundary, not in a screen.
type orderRow struct {
	ID              string
	UserEmail       string
	TotalPrice      float64
	Items           []byte
	PaymentStatus   string
	DeliveryAddress sql.NullString
	PaymentIntentID sql.NullString
	FailureReason   sql.NullString
	CreatedAt       sql.NullTime
}

func (r orderRow) toDomain() (domain.Order, error) {
	status, ok := domain.ParseStatus(r.PaymentStatus)
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: unknown payment_status %q", r.ID, r.PaymentStatus)
	}

	var items []domain.Item
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &items); err != nil {
			return domain.Order{}, fmt.Errorf("order %s: malformed items: %w", r.ID, err)
		}
	}
	for i, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("order %s: invalid item %d", r.ID, i)
		}
	}

	return domain.Order{
		ID:              r.ID,
		UserEmail:       r.UserEmail,
		TotalPrice:      r.TotalPrice,
		Items:           items,
		PaymentStatus:   status,
		DeliveryAddress: r.DeliveryAddress.String,
		PaymentIntentID: r.PaymentIntentID.String,
		FailureReason:   r.FailureReason.String,
		CreatedAt:       r.CreatedAt.Time,
	}, nil
}

const orderColumns = `id, user_email, total_price, items, payment_status, delivery_address, payment_intent_id, failure_reason, created_at`

func (r *OrderRepo) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal items: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_email, total_price, items, payment_status, delivery_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING `+orderColumns,
		order.ID, order.UserEmail, order.TotalPrice, items, string(order.PaymentStatus), order.DeliveryAddress,
	)
	return scanOrder(row)
}

func (r *OrderRepo) GetForUser(ctx context.Context, id, userEmail string) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND user_email = $2`,
		id, userEmail,
	)
	return scanOrder(row)
}

func (r *OrderRepo) ListByEmail(ctx context.Context, userEmail string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_email = $1
		ORDER BY created_at DESC`,
		userEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *OrderRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE payment_status = $1
		ORDER BY created_at ASC`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status, failureReason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, failure_reason = $2
		WHERE id = $3 AND payment_status = $4`,
		string(to), failureReason, id, string(from),
	)
	if err != nil {
		return err
	}
	return oneRowOr(res, app.ErrConflict)
}

func (r *OrderRepo) SetDeliveryAddress(ctx context.Context, id, userEmail, address string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET delivery_address = $1
		WHERE id = $2 AND user_email = $3`,
		address, id, userEmail,
	)
	if err != nil {
		return err
	}
	return oneRowOr(res, app.ErrNotFound)
}

func (r *OrderRepo) SetPaymentIntent(ctx context.Context, id, userEmail, intentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_intent_id = $1
		WHERE id = $2 AND user_email = $3`,
		intentID, id, userEmail,
	)
	if err != nil {
		return err
	}
	return oneRowOr(res, app.ErrNotFound)
}

func (r *OrderRepo) Delete(ctx context.Context, id, userEmail string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id = $1 AND user_email = $2`,
		id, userEmail,
	)
	if err != nil {
		return err
	}
	return oneRowOr(res, app.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var or orderRow
	err := row.Scan(
		&or.ID, &or.UserEmail, &or.TotalPrice, &or.Items, &or.PaymentStatus,
		&or.DeliveryAddress, &or.PaymentIntentID, &or.FailureReason, &or.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return or.toDomain()
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	var out []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

func oneRowOr(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
