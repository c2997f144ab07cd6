package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a stored card. The full card number is held only in
// reversibly encrypted form; the plaintext is never persisted or logged.
type PaymentMethod struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	CardNumberEnc string    `json:"-"` // AES-256-GCM, never exposed raw
	Last4         string    `json:"last4"`
	HolderName    string    `json:"holder_name"`
	ExpiryMonth   int       `json:"expiry_month"`
	ExpiryYear    int       `json:"expiry_year"`
	CardType      string    `json:"card_type"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsExpired reports whether the card has passed its expiry month.
func (p *PaymentMethod) IsExpired(now time.Time) bool {
	if p.ExpiryYear < now.Year() {
		return true
	}
	return p.ExpiryYear == now.Year() && p.ExpiryMonth < int(now.Month())
}

// UsableBy reports whether the method can fund a deposit for the account.
func (p *PaymentMethod) UsableBy(accountID uuid.UUID, now time.Time) bool {
	return p.Active && p.AccountID == accountID && !p.IsExpired(now)
}
