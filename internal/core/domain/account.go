package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind distinguishes personal wallets from business accounts.
type AccountKind string

const (
	AccountKindPersonal AccountKind = "PERSONAL"
	AccountKindBusiness AccountKind = "BUSINESS"
)

// Account is a wallet holder. Balance is a fixed-point currency value and is
// only ever mutated through the ledger engine's atomic adjust operation.
type Account struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	FullName     string          `json:"full_name"`
	Kind         AccountKind     `json:"kind"`
	Balance      decimal.Decimal `json:"balance"`
	Locked       bool            `json:"locked"`
	PasswordHash string          `json:"-"`
	PinHash      string          `json:"-"` // transaction PIN; empty means not set
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasPin reports whether a transaction PIN has been configured.
func (a *Account) HasPin() bool {
	return a.PinHash != ""
}

// IsBusiness reports whether the account carries business capabilities
// (issuing invoices, accepting payments, applying for loans).
func (a *Account) IsBusiness() bool {
	return a.Kind == AccountKindBusiness
}
