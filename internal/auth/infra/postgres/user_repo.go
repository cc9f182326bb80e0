package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clvmartin/boutique/internal/auth/app"
	"github.com/lib/pq"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user app.User, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())`,
		user.ID, user.Email, passwordHash,
	)
	if isUniqueViolation(err) {
		return app.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (app.User, string, error) {
	var (
		user app.User
		hash string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return app.User{}, "", app.ErrUserNotFound
	}
	if err != nil {
		return app.User{}, "", err
	}
	return user, hash, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
