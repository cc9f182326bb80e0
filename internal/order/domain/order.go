package domain

import "time"

// Status is the order payment status as persisted. "En attente" is the
// stored pending value the mobile client displays.
type Status string

const (
	StatusPending Status = "En attente"
	StatusPaid    Status = "success"
	StatusFailed  Status = "failed"
)

// CanTransition reports whether moving from s to next is a legal
// lifecycle step. Paid is terminal. Failed marks an order whose charge
// was confirmed by the gateway but whose status write was lost; the
// reconciler moves it to paid once the write lands.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusFailed
	case StatusFailed:
		return next == StatusPaid
	default:
		return false
	}
}

func ParseStatus(v string) (Status, bool) {
	switch Status(v) {
	case StatusPending, StatusPaid, StatusFailed:
		return Status(v), true
	}
	return "", false
}

type Item struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type Order struct {
	ID              string
	UserEmail       string
	TotalPrice      float64
	Items           []Item
	PaymentStatus   Status
	DeliveryAddress string
	PaymentIntentID string
	FailureReason   string
	CreatedAt       time.Time
}
