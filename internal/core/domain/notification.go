package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind categorizes a notification for the client.
type NotificationKind string

const (
	NotificationKindMovement     NotificationKind = "MOVEMENT"
	NotificationKindMoneyRequest NotificationKind = "MONEY_REQUEST"
	NotificationKindInvoice      NotificationKind = "INVOICE"
	NotificationKindLoan         NotificationKind = "LOAN"
	NotificationKindSecurity     NotificationKind = "SECURITY"
)

// Notification is a fire-and-forget record written by callers after an
// action settles. The ledger engine never writes notifications itself.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	AccountID uuid.UUID        `json:"account_id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
