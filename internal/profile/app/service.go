package app

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is what repos return for a missing row. Get swallows
	// it: a user without a saved profile is an empty profile, not an
	// error.
	ErrNotFound = errors.New("profile not found")
)

type Service struct {
	repo ProfileRepo
}

func NewService(repo ProfileRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Profile{UserID: userID}, nil
	}
	return p, err
}

func (s *Service) Save(ctx context.Context, p Profile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrInvalidInput
	}
	return s.repo.Upsert(ctx, p)
}
