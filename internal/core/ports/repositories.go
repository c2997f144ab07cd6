package ports

import (
	"context"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository is the user directory plus the ledger store. Methods
// accepting pgx.Tx run inside the engine's transaction under row locks; only
// the ledger engine may call the balance mutation.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// GetByIdentifier resolves an email, phone number or username.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	SetPinHash(ctx context.Context, id uuid.UUID, pinHash string) error
	SetLocked(ctx context.Context, id uuid.UUID, locked bool) error
}

// MovementRepository is the append-only transaction log. Create enforces id
// uniqueness and returns domain.ErrDuplicateMovementID on reuse.
type MovementRepository interface {
	Create(ctx context.Context, tx pgx.Tx, movement *domain.Movement) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	// ListByAccount returns movements touching the account,
	// most-recent-first, paginated.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error)
}

// MoneyRequestRepository persists ask-for-funds records.
type MoneyRequestRepository interface {
	Create(ctx context.Context, request *domain.MoneyRequest) error
	GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.MoneyRequestStatus) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.MoneyRequest, error)
	// ExpirePending moves every PENDING request past its expiry to EXPIRED
	// and returns the number of rows affected.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, movementID *string) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.Invoice, error)
	// MarkOverdue flips PENDING invoices past their due date to OVERDUE.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// LoanRepository persists loan applications.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.LoanApplication) error
	GetByID(ctx context.Context, id string) (*domain.LoanApplication, error)
	UpdateStatus(ctx context.Context, id string, status domain.LoanStatus, decidedAt time.Time) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.LoanApplication, error)
}

// PaymentMethodRepository persists stored cards (encrypted at rest).
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentMethod, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository persists caller-side notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
