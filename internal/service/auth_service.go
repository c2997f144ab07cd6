package service

import (
	"context"
	"fmt"
	"time"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AuthServiceImpl implements ports.AuthService. Repeated failed logins lock
// the account row; a locked account cannot log in until support clears the
// flag.
type AuthServiceImpl struct {
	accountRepo  ports.AccountRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	loginLimiter ports.PinAttemptLimiter
	log          zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	loginLimiter ports.PinAttemptLimiter,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo:  accountRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		loginLimiter: loginLimiter,
		log:          log,
	}
}

// Register creates a new account with a zero balance wallet. Username, email
// and phone must all be unused: recipients are resolved by any of the three,
// so a duplicate would make recipient lookup ambiguous. The transaction PIN
// starts unset; fund-leaving operations are unavailable until it is set.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Account, error) {
	existing, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	if req.Email != "" {
		existing, err := s.accountRepo.GetByIdentifier(ctx, req.Email)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
		}
		if existing != nil {
			return nil, apperror.ErrEmailExists()
		}
	}
	if req.Phone != "" {
		existing, err := s.accountRepo.GetByIdentifier(ctx, req.Phone)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check phone: %w", err))
		}
		if existing != nil {
			return nil, apperror.ErrPhoneExists()
		}
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.AccountKindPersonal
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		FullName:     req.FullName,
		Kind:         kind,
		Balance:      decimal.Zero,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	return account, nil
}

// Login validates credentials and returns a session token. A wrong password
// counts against the account's attempt budget; exhausting it locks the
// account.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, *domain.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	if account.Locked {
		return "", time.Time{}, nil, apperror.ErrAccountLocked()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		s.recordFailedLogin(ctx, account.ID)
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	if err := s.loginLimiter.Reset(ctx, account.ID); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to reset login counter")
	}

	token, expiresAt, err := s.tokenSvc.Generate(account.ID, account.Username)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiresAt, account, nil
}

// recordFailedLogin counts the attempt and locks the account once the budget
// is spent. Limiter outages degrade to counting nothing rather than blocking
// logins.
func (s *AuthServiceImpl) recordFailedLogin(ctx context.Context, accountID uuid.UUID) {
	if err := s.loginLimiter.RecordFailure(ctx, accountID); err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("failed to record login failure")
		return
	}

	allowed, err := s.loginLimiter.Allow(ctx, accountID)
	if err != nil || allowed {
		return
	}
	if err := s.accountRepo.SetLocked(ctx, accountID, true); err != nil {
		s.log.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to lock account")
		return
	}
	s.log.Warn().Str("account_id", accountID.String()).Msg("account locked after repeated failed logins")
}

// SetTransactionPin sets or replaces the transaction PIN after re-verifying
// the account password. The plaintext PIN is hashed before storage and never
// logged.
func (s *AuthServiceImpl) SetTransactionPin(ctx context.Context, accountID uuid.UUID, password, pin string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return apperror.ErrNotFound("account")
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return apperror.ErrInvalidCredentials()
	}

	pinHash, err := s.hashSvc.Hash(pin)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash pin: %w", err))
	}

	if err := s.accountRepo.SetPinHash(ctx, accountID, pinHash); err != nil {
		return apperror.InternalError(fmt.Errorf("store pin hash: %w", err))
	}
	return nil
}
