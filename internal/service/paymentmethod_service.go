package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentMethodServiceImpl implements ports.PaymentMethodService. Card
// numbers are validated (Luhn + expiry), encrypted with AES-256-GCM and only
// the last four digits are kept in the clear.
type PaymentMethodServiceImpl struct {
	methodRepo ports.PaymentMethodRepository
	encSvc     ports.EncryptionService
	log        zerolog.Logger
}

// NewPaymentMethodService creates a new PaymentMethodServiceImpl.
func NewPaymentMethodService(methodRepo ports.PaymentMethodRepository, encSvc ports.EncryptionService, log zerolog.Logger) *PaymentMethodServiceImpl {
	return &PaymentMethodServiceImpl{
		methodRepo: methodRepo,
		encSvc:     encSvc,
		log:        log,
	}
}

// Add validates and stores a card for the account.
func (s *PaymentMethodServiceImpl) Add(ctx context.Context, req ports.AddPaymentMethodRequest) (*domain.PaymentMethod, error) {
	digits := normalizeCardNumber(req.CardNumber)
	if !validLuhn(digits) {
		return nil, apperror.ErrInvalidCard("card number failed validation")
	}

	now := time.Now().UTC()
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		return nil, apperror.ErrInvalidCard("invalid expiry month")
	}
	if req.ExpiryYear < now.Year() || (req.ExpiryYear == now.Year() && req.ExpiryMonth < int(now.Month())) {
		return nil, apperror.ErrInvalidCard("card is expired")
	}

	cardEnc, err := s.encSvc.Encrypt(digits)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt card number: %w", err))
	}

	method := &domain.PaymentMethod{
		ID:            uuid.New(),
		AccountID:     req.AccountID,
		CardNumberEnc: cardEnc,
		Last4:         digits[len(digits)-4:],
		HolderName:    req.HolderName,
		ExpiryMonth:   req.ExpiryMonth,
		ExpiryYear:    req.ExpiryYear,
		CardType:      req.CardType,
		Active:        true,
		CreatedAt:     now,
	}

	if err := s.methodRepo.Create(ctx, method); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment method: %w", err))
	}

	s.log.Info().
		Str("method_id", method.ID.String()).
		Str("account_id", method.AccountID.String()).
		Str("last4", method.Last4).
		Msg("payment method added")

	return method, nil
}

// List returns the account's stored cards (encrypted numbers stay opaque).
func (s *PaymentMethodServiceImpl) List(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentMethod, error) {
	methods, err := s.methodRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payment methods: %w", err))
	}
	return methods, nil
}

// Deactivate removes a card from use. Only the owner may deactivate.
func (s *PaymentMethodServiceImpl) Deactivate(ctx context.Context, id uuid.UUID, accountID uuid.UUID) error {
	method, err := s.methodRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find payment method: %w", err))
	}
	if method == nil {
		return apperror.ErrNotFound("payment method")
	}
	if method.AccountID != accountID {
		return apperror.ErrForbidden()
	}
	if err := s.methodRepo.Deactivate(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate payment method: %w", err))
	}
	return nil
}

func normalizeCardNumber(cardNumber string) string {
	var b strings.Builder
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validLuhn runs the Luhn checksum over a digit string.
func validLuhn(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	alternate := false
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
