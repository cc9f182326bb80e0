package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clvmartin/boutique/internal/profile/app"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (app.Profile, error) {
	var (
		p        app.Profile
		fullName sql.NullString
		address  sql.NullString
		phone    sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, delivery_address, phone
		FROM profiles
		WHERE id = $1`,
		userID,
	).Scan(&p.UserID, &fullName, &address, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return app.Profile{}, app.ErrNotFound
	}
	if err != nil {
		return app.Profile{}, err
	}

	p.FullName = fullName.String
	p.DeliveryAddress = address.String
	p.Phone = phone.String
	return p, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p app.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, delivery_address, phone, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    delivery_address = EXCLUDED.delivery_address,
		    phone = EXCLUDED.phone,
		    updated_at = now()`,
		p.UserID, p.FullName, p.DeliveryAddress, p.Phone,
	)
	return err
}
