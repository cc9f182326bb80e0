package app

import "context"

type Profile struct {
	UserID          string
	FullName        string
	DeliveryAddress string
	Phone           string
}

type ProfileRepo interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
}
