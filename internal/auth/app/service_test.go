package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users  map[string]User
	hashes map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]User{}, hashes: map[string]string{}}
}

func (r *memUserRepo) Create(ctx context.Context, user User, passwordHash string) error {
	if _, ok := r.users[user.Email]; ok {
		return ErrEmailTaken
	}
	r.users[user.Email] = user
	r.hashes[user.Email] = passwordHash
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (User, string, error) {
	u, ok := r.users[email]
	if !ok {
		return User{}, "", ErrUserNotFound
	}
	return u, r.hashes[email], nil
}

func TestSignUpAndLogin(t *testing.T) {
	svc := NewService(newMemUserRepo(), []byte("test-secret"))
	ctx := context.Background()

	signed, err := svc.SignUp(ctx, "Claire@Example.FR", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, "claire@example.fr", signed.User.Email)
	assert.NotEmpty(t, signed.User.ID)
	assert.NotEmpty(t, signed.Token)

	logged, err := svc.Login(ctx, "claire@example.fr", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, logged.User.ID)
}

func TestSignUpValidation(t *testing.T) {
	svc := NewService(newMemUserRepo(), []byte("test-secret"))
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@b.fr", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := NewService(newMemUserRepo(), []byte("test-secret"))
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.fr", "motdepasse")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "a@b.fr", "autremotdepasse")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(newMemUserRepo(), []byte("test-secret"))
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.fr", "motdepasse")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.fr", "mauvais")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "inconnu@b.fr", "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseSession(t *testing.T) {
	svc := NewService(newMemUserRepo(), []byte("test-secret"))
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "a@b.fr", "motdepasse")
	require.NoError(t, err)

	t.Run("valid token round-trips", func(t *testing.T) {
		user, err := svc.ParseSession(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User, user)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.ParseSession(ctx, "garbage")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("foreign secret is rejected", func(t *testing.T) {
		other := NewService(newMemUserRepo(), []byte("other-secret"))
		_, err := other.ParseSession(ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(49 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.ParseSession(ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}
