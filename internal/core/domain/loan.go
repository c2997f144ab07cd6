package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the decision state of a loan application.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
)

// LoanApplication is a funding request. Only business accounts may apply.
type LoanApplication struct {
	ID         string          `json:"id"`
	BusinessID uuid.UUID       `json:"business_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Purpose    string          `json:"purpose"`
	Status     LoanStatus      `json:"status"`
	DecidedAt  *time.Time      `json:"decided_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewLoanID generates a globally unique loan application identifier.
func NewLoanID() string {
	return "LOAN-" + uuid.NewString()
}

// IsDecided reports whether the application reached a final decision.
func (l *LoanApplication) IsDecided() bool {
	return l.Status != LoanStatusPending
}
