package ports

import (
	"context"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption/decryption of stored
// card data.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService is the authorization gate's hash primitive (Argon2id).
// Verify never errors on a simple mismatch; it returns false.
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT session token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
}

// IdempotencyCache is the Redis fast path for duplicate movement detection.
// The movement log's unique constraint remains the authoritative check.
type IdempotencyCache interface {
	// Seen reports whether the movement id was already applied.
	Seen(ctx context.Context, movementID string) (bool, error)
	// Remember marks the movement id as applied for the given TTL.
	Remember(ctx context.Context, movementID string, ttl time.Duration) error
}

// PinAttemptLimiter throttles failed transaction-PIN attempts per account.
type PinAttemptLimiter interface {
	// Allow reports whether the account may attempt PIN authorization.
	Allow(ctx context.Context, accountID uuid.UUID) (bool, error)
	// RecordFailure registers a failed attempt.
	RecordFailure(ctx context.Context, accountID uuid.UUID) error
	// Reset clears the failure counter after a successful authorization.
	Reset(ctx context.Context, accountID uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the money-movement engine: the only component that
// combines balance adjustments with a movement log append into one atomic
// business action.
type LedgerService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.Movement, error)
	Deposit(ctx context.Context, req DepositRequest) (*domain.Movement, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Movement, error)
	AcceptPayment(ctx context.Context, req AcceptPaymentRequest) (*domain.Movement, error)
	History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error)
}

// TransferRequest holds input for a peer-to-peer transfer.
type TransferRequest struct {
	MovementID string // optional client-supplied idempotency id
	SourceID   uuid.UUID
	Recipient  string // email, phone or username
	Amount     decimal.Decimal
	Pin        string
	Note       *string
}

// DepositRequest holds input for a wallet top-up from a stored card.
type DepositRequest struct {
	MovementID      string
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	PaymentMethodID uuid.UUID
}

// WithdrawRequest holds input for a withdrawal to an external account.
type WithdrawRequest struct {
	MovementID string
	AccountID  uuid.UUID
	Amount     decimal.Decimal
	Pin        string
}

// AcceptPaymentRequest holds input for a business collecting a customer
// payment. The customer authorizes with their own PIN.
type AcceptPaymentRequest struct {
	MovementID  string
	BusinessID  uuid.UUID
	Customer    string // email, phone or username
	Amount      decimal.Decimal
	CustomerPin string
	Note        *string
}

// AuthService defines registration and authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	// Login returns a session token and its expiry.
	Login(ctx context.Context, username, password string) (string, time.Time, *domain.Account, error)
	// SetTransactionPin requires a fresh password verification.
	SetTransactionPin(ctx context.Context, accountID uuid.UUID, password, pin string) error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username string
	Email    string
	Phone    string
	FullName string
	Password string
	Kind     domain.AccountKind
}

// MoneyRequestService manages the ask-for-funds lifecycle. Accepting a
// request drives a transfer through the ledger engine.
type MoneyRequestService interface {
	Create(ctx context.Context, req CreateMoneyRequestRequest) (*domain.MoneyRequest, error)
	Accept(ctx context.Context, requestID string, payerID uuid.UUID, pin string) (*domain.Movement, error)
	Decline(ctx context.Context, requestID string, payerID uuid.UUID) error
	Cancel(ctx context.Context, requestID string, requesterID uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.MoneyRequest, error)
	// ExpirePending sweeps pending requests past their window.
	ExpirePending(ctx context.Context) (int64, error)
}

// CreateMoneyRequestRequest holds input for creating a money request.
type CreateMoneyRequestRequest struct {
	RequesterID uuid.UUID
	Payer       string // email, phone or username
	Amount      decimal.Decimal
	Note        *string
}

// InvoiceService manages business invoicing. Paying an invoice drives a
// PAYMENT movement through the ledger engine.
type InvoiceService interface {
	Issue(ctx context.Context, req IssueInvoiceRequest) (*domain.Invoice, error)
	Pay(ctx context.Context, invoiceID string, customerID uuid.UUID, pin string) (*domain.Movement, error)
	Cancel(ctx context.Context, invoiceID string, businessID uuid.UUID) error
	ListIssued(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.Invoice, error)
	ListReceived(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.Invoice, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

// IssueInvoiceRequest holds input for issuing an invoice.
type IssueInvoiceRequest struct {
	BusinessID uuid.UUID
	Customer   string // email, phone or username
	Amount     decimal.Decimal
	Note       *string
	DueDate    time.Time
}

// LoanService manages loan applications (business accounts only).
type LoanService interface {
	Apply(ctx context.Context, req LoanApplicationRequest) (*domain.LoanApplication, error)
	// Decide approves or rejects a pending application. The applicant
	// cannot decide its own loan.
	Decide(ctx context.Context, loanID string, deciderID uuid.UUID, approve bool) (*domain.LoanApplication, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.LoanApplication, error)
}

// LoanApplicationRequest holds input for a loan application.
type LoanApplicationRequest struct {
	BusinessID uuid.UUID
	Amount     decimal.Decimal
	TermMonths int
	Purpose    string
}

// PaymentMethodService manages stored cards.
type PaymentMethodService interface {
	Add(ctx context.Context, req AddPaymentMethodRequest) (*domain.PaymentMethod, error)
	List(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentMethod, error)
	Deactivate(ctx context.Context, id uuid.UUID, accountID uuid.UUID) error
}

// AddPaymentMethodRequest holds input for storing a card.
type AddPaymentMethodRequest struct {
	AccountID   uuid.UUID
	CardNumber  string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CardType    string
}

// NotificationService records and serves caller-side notifications.
type NotificationService interface {
	Notify(ctx context.Context, accountID uuid.UUID, kind domain.NotificationKind, message string) error
	List(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ReportingService serves balance and history projections.
type ReportingService interface {
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error)
}
