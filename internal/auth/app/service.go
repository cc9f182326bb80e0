package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUserNotFound       = errors.New("user not found")
)

const sessionTTL = 48 * time.Hour

// Session is what a successful signup or login hands the client: the
// user plus a bearer token the client presents on later launches.
type Session struct {
	User  User
	Token string
}

type Service struct {
	repo   UserRepo
	secret []byte
	now    func() time.Time
}

func NewService(repo UserRepo, secret []byte) *Service {
	return &Service{repo: repo, secret: secret, now: time.Now}
}

func (s *Service) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, ErrInvalidInput
	}
	if len(password) < 6 {
		return Session{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	user := User{ID: uuid.NewString(), Email: email}
	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		return Session{}, err
	}

	return s.newSession(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, hash, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// ParseSession validates a bearer token and returns the user it was
// minted for.
func (s *Service) ParseSession(ctx context.Context, token string) (User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return User{}, ErrInvalidSession
	}

	return User{ID: sub, Email: email}, nil
}

func (s *Service) newSession(user User) (Session, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: signed}, nil
}
