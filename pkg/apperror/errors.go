package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Movement Validation (VAL) ----

func ErrBelowMinimumAmount(min string) *AppError {
	return New("VAL_001", fmt.Sprintf("Amount is below the minimum of %s", min), http.StatusBadRequest)
}

func ErrAboveMaximumAmount(max string) *AppError {
	return New("VAL_002", fmt.Sprintf("Amount is above the maximum of %s", max), http.StatusBadRequest)
}

func ErrSelfMovementNotAllowed() *AppError {
	return New("VAL_003", "Cannot move money to your own wallet", http.StatusBadRequest)
}

func ErrRecipientNotFound() *AppError {
	return New("VAL_004", "Recipient not found", http.StatusNotFound)
}

func ErrRecipientLocked() *AppError {
	return New("VAL_005", "Recipient account is locked", http.StatusUnprocessableEntity)
}

func ErrInvalidCard(reason string) *AppError {
	return New("VAL_006", fmt.Sprintf("Invalid card: %s", reason), http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("VAL_007", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrPinNotSet() *AppError {
	return New("AUTH_004", "Transaction PIN is not set", http.StatusForbidden)
}

func ErrInvalidPin() *AppError {
	return New("AUTH_005", "Invalid transaction PIN", http.StatusForbidden)
}

func ErrBusinessAccountRequired() *AppError {
	return New("AUTH_006", "Business account required", http.StatusForbidden)
}

func ErrForbidden() *AppError {
	return New("AUTH_007", "Not allowed for this account", http.StatusForbidden)
}

func ErrAccountLocked() *AppError {
	return New("AUTH_008", "Account is locked, contact support", http.StatusForbidden)
}

func ErrEmailExists() *AppError {
	return New("AUTH_009", "Email already registered", http.StatusConflict)
}

func ErrPhoneExists() *AppError {
	return New("AUTH_010", "Phone number already registered", http.StatusConflict)
}

// ---- Ledger Consistency (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrDuplicateMovement() *AppError {
	return New("PAY_002", "Movement id already applied", http.StatusConflict)
}

func ErrRequestNotPending() *AppError {
	return New("PAY_003", "Money request is no longer pending", http.StatusConflict)
}

func ErrInvoiceNotPayable() *AppError {
	return New("PAY_004", "Invoice is not payable", http.StatusConflict)
}

func ErrLoanAlreadyDecided() *AppError {
	return New("PAY_005", "Loan application already decided", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

func ErrTooManyPinAttempts() *AppError {
	return New("RATE_002", "Too many failed PIN attempts, try again later", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}
