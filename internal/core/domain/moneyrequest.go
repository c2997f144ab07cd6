package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyRequestStatus represents the lifecycle state of a money request.
type MoneyRequestStatus string

const (
	MoneyRequestStatusPending   MoneyRequestStatus = "PENDING"
	MoneyRequestStatusAccepted  MoneyRequestStatus = "ACCEPTED"
	MoneyRequestStatusDeclined  MoneyRequestStatus = "DECLINED"
	MoneyRequestStatusCancelled MoneyRequestStatus = "CANCELLED"
	MoneyRequestStatusExpired   MoneyRequestStatus = "EXPIRED"
)

// MoneyRequest is a non-financial ask for funds. It becomes a transfer
// movement only when accepted; until then it carries no balance effect.
// Pending requests expire automatically after a configurable window.
type MoneyRequest struct {
	ID          string             `json:"id"`
	RequesterID uuid.UUID          `json:"requester_id"`
	PayerID     uuid.UUID          `json:"payer_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      MoneyRequestStatus `json:"status"`
	Description *string            `json:"description,omitempty"`
	ExpiresAt   time.Time          `json:"expires_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewMoneyRequestID generates a globally unique request identifier.
func NewMoneyRequestID() string {
	return "REQ-" + uuid.NewString()
}

// IsActionable reports whether the request still accepts a decision.
func (r *MoneyRequest) IsActionable(now time.Time) bool {
	return r.Status == MoneyRequestStatusPending && now.Before(r.ExpiresAt)
}

// IsExpired reports whether a pending request has passed its expiry window.
func (r *MoneyRequest) IsExpired(now time.Time) bool {
	return r.Status == MoneyRequestStatusPending && !now.Before(r.ExpiresAt)
}
