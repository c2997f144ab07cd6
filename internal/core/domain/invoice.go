package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
)

// Invoice is a bill issued by a business account to a customer. Paying it
// drives a PAYMENT movement through the ledger engine.
type Invoice struct {
	ID          string          `json:"id"`
	BusinessID  uuid.UUID       `json:"business_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      InvoiceStatus   `json:"status"`
	Description *string         `json:"description,omitempty"`
	DueDate     time.Time       `json:"due_date"`
	MovementID  *string         `json:"movement_id,omitempty"` // set once paid
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewInvoiceID generates a globally unique invoice identifier.
func NewInvoiceID() string {
	return "INV-" + uuid.NewString()
}

// IsPayable reports whether the invoice can still be settled.
// Overdue invoices remain payable; cancelled and paid ones do not.
func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}
