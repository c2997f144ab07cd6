package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicateMovementID is returned by the movement log when an id has
// already been recorded. It is the idempotency backstop for retried submits.
var ErrDuplicateMovementID = errors.New("movement id already exists")

// MovementKind represents the kind of balance change.
type MovementKind string

const (
	MovementKindTransfer   MovementKind = "TRANSFER"
	MovementKindDeposit    MovementKind = "DEPOSIT"
	MovementKindWithdrawal MovementKind = "WITHDRAWAL"
	MovementKindPayment    MovementKind = "PAYMENT"
)

// MovementStatus represents the lifecycle state of a movement.
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "PENDING"
	MovementStatusCompleted MovementStatus = "COMPLETED"
	MovementStatusFailed    MovementStatus = "FAILED"
)

// Movement is an immutable record of one completed or failed balance change.
// It is created in the same atomic unit as its balance effects: no movement
// exists whose effects were not applied, and no balance change exists without
// a movement.
type Movement struct {
	ID              string          `json:"id"`
	Kind            MovementKind    `json:"kind"`
	SourceID        uuid.UUID       `json:"source_id"`
	DestinationID   uuid.UUID       `json:"destination_id"`
	Amount          decimal.Decimal `json:"amount"`
	Fee             decimal.Decimal `json:"fee"`
	Status          MovementStatus  `json:"status"`
	Description     *string         `json:"description,omitempty"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewMovementID generates a globally unique movement identifier.
func NewMovementID() string {
	return "TXN-" + uuid.NewString()
}

// IsTerminal returns true once the movement reached a final state.
func (m *Movement) IsTerminal() bool {
	return m.Status == MovementStatusCompleted || m.Status == MovementStatusFailed
}

// IsSelf reports whether the movement stays within one wallet
// (deposits and withdrawals).
func (m *Movement) IsSelf() bool {
	return m.SourceID == m.DestinationID
}

// NetEffect returns the signed effect of the movement on the given account:
// credits are positive, debits (amount plus fee) negative. Failed movements
// have no effect.
func (m *Movement) NetEffect(accountID uuid.UUID) decimal.Decimal {
	if m.Status != MovementStatusCompleted {
		return decimal.Zero
	}
	switch m.Kind {
	case MovementKindDeposit:
		if m.SourceID == accountID {
			return m.Amount
		}
	case MovementKindWithdrawal:
		if m.SourceID == accountID {
			return m.Amount.Neg()
		}
	default:
		if m.SourceID == accountID {
			return m.Amount.Add(m.Fee).Neg()
		}
		if m.DestinationID == accountID {
			return m.Amount
		}
	}
	return decimal.Zero
}

// CarriesFee reports whether the kind is subject to the transaction fee.
// Deposits and withdrawals move net amounts only.
func (k MovementKind) CarriesFee() bool {
	return k == MovementKindTransfer || k == MovementKindPayment
}

// RequiresPin reports whether the kind moves money out of a wallet and
// therefore needs transaction-PIN authorization.
func (k MovementKind) RequiresPin() bool {
	return k != MovementKindDeposit
}
