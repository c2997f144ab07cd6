package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Kind     string `json:"kind" binding:"required,oneof=PERSONAL BUSINESS"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token   string          `json:"token"`
	Expiry  int64           `json:"expiry"` // Unix timestamp
	Account AccountResponse `json:"account"`
}

// SetPinRequest is the request body for setting the transaction PIN.
// The password is re-verified before the PIN is accepted.
type SetPinRequest struct {
	Password string `json:"password" binding:"required"`
	Pin      string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Kind     string `json:"kind"`
	Balance  string `json:"balance"`
	HasPin   bool   `json:"has_pin"`
}

// TransferRequest is the request body for a peer-to-peer transfer.
// Amount is a decimal string ("50.00"); float JSON numbers are rejected
// to keep currency math exact.
type TransferRequest struct {
	MovementID string  `json:"movement_id,omitempty" binding:"omitempty,max=100,safe_id"`
	Recipient  string  `json:"recipient" binding:"required,max=100"`
	Amount     string  `json:"amount" binding:"required"`
	Pin        string  `json:"pin" binding:"required,numeric,min=4,max=6"`
	Note       *string `json:"note,omitempty" binding:"omitempty,max=255"`
}

// DepositRequest is the request body for a wallet top-up from a stored card.
type DepositRequest struct {
	MovementID      string `json:"movement_id,omitempty" binding:"omitempty,max=100,safe_id"`
	Amount          string `json:"amount" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required,uuid"`
}

// WithdrawRequest is the request body for a withdrawal.
type WithdrawRequest struct {
	MovementID string `json:"movement_id,omitempty" binding:"omitempty,max=100,safe_id"`
	Amount     string `json:"amount" binding:"required"`
	Pin        string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// AcceptPaymentRequest is the request body for a business collecting a
// customer payment. The customer authorizes with their own PIN.
type AcceptPaymentRequest struct {
	MovementID  string  `json:"movement_id,omitempty" binding:"omitempty,max=100,safe_id"`
	Customer    string  `json:"customer" binding:"required,max=100"`
	Amount      string  `json:"amount" binding:"required"`
	CustomerPin string  `json:"customer_pin" binding:"required,numeric,min=4,max=6"`
	Note        *string `json:"note,omitempty" binding:"omitempty,max=255"`
}

// MovementResponse is the response body for a completed movement.
type MovementResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	SourceID      string  `json:"source_id"`
	DestinationID string  `json:"destination_id"`
	Amount        string  `json:"amount"`
	Fee           string  `json:"fee"`
	Status        string  `json:"status"`
	Note          *string `json:"note,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// MovementListResponse wraps a paginated movement history.
type MovementListResponse struct {
	Items  []MovementResponse `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// CreateMoneyRequestRequest is the request body for asking another account
// for funds.
type CreateMoneyRequestRequest struct {
	Payer  string  `json:"payer" binding:"required,max=100"`
	Amount string  `json:"amount" binding:"required"`
	Note   *string `json:"note,omitempty" binding:"omitempty,max=255"`
}

// AcceptMoneyRequestRequest is the request body for paying a money request.
type AcceptMoneyRequestRequest struct {
	Pin string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// MoneyRequestResponse is the response body for a money request.
type MoneyRequestResponse struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requester_id"`
	PayerID     string  `json:"payer_id"`
	Amount      string  `json:"amount"`
	Status      string  `json:"status"`
	Note        *string `json:"note,omitempty"`
	ExpiresAt   string  `json:"expires_at"`
	CreatedAt   string  `json:"created_at"`
}

// IssueInvoiceRequest is the request body for a business issuing an invoice.
type IssueInvoiceRequest struct {
	Customer string  `json:"customer" binding:"required,max=100"`
	Amount   string  `json:"amount" binding:"required"`
	Note     *string `json:"note,omitempty" binding:"omitempty,max=255"`
	DueDate  string  `json:"due_date" binding:"required"` // RFC 3339
}

// PayInvoiceRequest is the request body for paying an invoice.
type PayInvoiceRequest struct {
	Pin string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"business_id"`
	CustomerID string  `json:"customer_id"`
	Amount     string  `json:"amount"`
	Status     string  `json:"status"`
	Note       *string `json:"note,omitempty"`
	MovementID *string `json:"movement_id,omitempty"`
	DueDate    string  `json:"due_date"`
	CreatedAt  string  `json:"created_at"`
}

// LoanApplicationRequest is the request body for a loan application.
type LoanApplicationRequest struct {
	Amount     string `json:"amount" binding:"required"`
	TermMonths int    `json:"term_months" binding:"required,min=1,max=120"`
	Purpose    string `json:"purpose" binding:"required,max=255"`
}

// LoanDecisionRequest is the request body for deciding a loan application.
type LoanDecisionRequest struct {
	Approve bool `json:"approve"`
}

// LoanResponse is the response body for a loan application.
type LoanResponse struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	Amount     string `json:"amount"`
	TermMonths int    `json:"term_months"`
	Purpose    string `json:"purpose"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// AddPaymentMethodRequest is the request body for storing a card.
type AddPaymentMethodRequest struct {
	CardNumber  string `json:"card_number" binding:"required,min=13,max=23"`
	HolderName  string `json:"holder_name" binding:"required,min=1,max=100"`
	ExpiryMonth int    `json:"expiry_month" binding:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" binding:"required,min=2000,max=2100"`
	CardType    string `json:"card_type" binding:"required,oneof=VISA MASTERCARD AMEX"`
}

// PaymentMethodResponse is the response body for a stored card. Only the
// last four digits are ever returned.
type PaymentMethodResponse struct {
	ID          string `json:"id"`
	Last4       string `json:"last4"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CardType    string `json:"card_type"`
	Active      bool   `json:"active"`
}

// NotificationResponse is the response body for a notification.
type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}
