package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const movementIdempotencyTTL = 24 * time.Hour

// LedgerPolicy holds the money-movement limits and fee rate.
type LedgerPolicy struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	FeeRate   decimal.Decimal // fraction, e.g. 0.015 for 1.5%
}

// LedgerServiceImpl implements ports.LedgerService. It is the only writer to
// account balances and the movement log, and it always writes both inside a
// single database transaction: the debit, the credit and the log append
// become visible together or not at all.
type LedgerServiceImpl struct {
	accountRepo  ports.AccountRepository
	movementRepo ports.MovementRepository
	methodRepo   ports.PaymentMethodRepository
	idempCache   ports.IdempotencyCache
	pinLimiter   ports.PinAttemptLimiter
	hashSvc      ports.HashService
	transactor   ports.DBTransactor
	policy       LedgerPolicy
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	movementRepo ports.MovementRepository,
	methodRepo ports.PaymentMethodRepository,
	idempCache ports.IdempotencyCache,
	pinLimiter ports.PinAttemptLimiter,
	hashSvc ports.HashService,
	transactor ports.DBTransactor,
	policy LedgerPolicy,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		methodRepo:   methodRepo,
		idempCache:   idempCache,
		pinLimiter:   pinLimiter,
		hashSvc:      hashSvc,
		transactor:   transactor,
		policy:       policy,
		log:          log,
	}
}

// Transfer moves funds between two wallets. The source pays amount plus fee;
// the recipient receives the amount.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Movement, error) {
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	recipient, err := s.resolveRecipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	if recipient.ID == req.SourceID {
		return nil, apperror.ErrSelfMovementNotAllowed()
	}

	source, err := s.accountRepo.GetByID(ctx, req.SourceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find source account: %w", err))
	}
	if source == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if source.Locked {
		return nil, apperror.ErrAccountLocked()
	}

	if err := s.authorizePin(ctx, source, req.Pin); err != nil {
		return nil, err
	}

	fee := domain.ComputeFee(req.Amount, s.policy.FeeRate)
	m := s.newMovement(req.MovementID, domain.MovementKindTransfer, source.ID, recipient.ID, req.Amount, fee, req.Note)

	if err := s.apply(ctx, m, req.Amount.Add(fee).Neg(), req.Amount); err != nil {
		return nil, err
	}
	return m, nil
}

// Deposit tops up a wallet from a stored payment method. Money entering the
// wallet needs no PIN and carries no fee.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*domain.Movement, error) {
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if account.Locked {
		return nil, apperror.ErrAccountLocked()
	}

	method, err := s.methodRepo.GetByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payment method: %w", err))
	}
	if method == nil || !method.UsableBy(req.AccountID, time.Now().UTC()) {
		return nil, apperror.ErrInvalidCard("unknown, inactive or expired payment method")
	}

	note := "Wallet top-up from card"
	m := s.newMovement(req.MovementID, domain.MovementKindDeposit, req.AccountID, req.AccountID, req.Amount, decimal.Zero, &note)
	m.PaymentMethodID = &method.ID

	if err := s.apply(ctx, m, req.Amount, decimal.Zero); err != nil {
		return nil, err
	}
	return m, nil
}

// Withdraw moves funds out of a wallet to an external account. PIN required,
// no fee.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Movement, error) {
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if account.Locked {
		return nil, apperror.ErrAccountLocked()
	}

	if err := s.authorizePin(ctx, account, req.Pin); err != nil {
		return nil, err
	}

	note := "Withdrawal to bank account"
	m := s.newMovement(req.MovementID, domain.MovementKindWithdrawal, req.AccountID, req.AccountID, req.Amount, decimal.Zero, &note)

	if err := s.apply(ctx, m, req.Amount.Neg(), decimal.Zero); err != nil {
		return nil, err
	}
	return m, nil
}

// AcceptPayment lets a business collect a payment from a customer wallet.
// The customer authorizes with their own PIN and pays amount plus fee.
func (s *LedgerServiceImpl) AcceptPayment(ctx context.Context, req ports.AcceptPaymentRequest) (*domain.Movement, error) {
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	business, err := s.accountRepo.GetByID(ctx, req.BusinessID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find business account: %w", err))
	}
	if business == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !business.IsBusiness() {
		return nil, apperror.ErrBusinessAccountRequired()
	}
	if business.Locked {
		return nil, apperror.ErrRecipientLocked()
	}

	customer, err := s.resolveRecipient(ctx, req.Customer)
	if err != nil {
		return nil, err
	}
	if customer.ID == business.ID {
		return nil, apperror.ErrSelfMovementNotAllowed()
	}

	if err := s.authorizePin(ctx, customer, req.CustomerPin); err != nil {
		return nil, err
	}

	fee := domain.ComputeFee(req.Amount, s.policy.FeeRate)
	m := s.newMovement(req.MovementID, domain.MovementKindPayment, customer.ID, business.ID, req.Amount, fee, req.Note)

	if err := s.apply(ctx, m, req.Amount.Add(fee).Neg(), req.Amount); err != nil {
		return nil, err
	}
	return m, nil
}

// History lists movements touching an account, most recent first.
func (s *LedgerServiceImpl) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error) {
	movements, err := s.movementRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list movements: %w", err))
	}
	return movements, nil
}

// --- movement pipeline: validate -> authorize -> apply ---

func (s *LedgerServiceImpl) validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(s.policy.MinAmount) {
		return apperror.ErrBelowMinimumAmount(s.policy.MinAmount.StringFixed(2))
	}
	if amount.GreaterThan(s.policy.MaxAmount) {
		return apperror.ErrAboveMaximumAmount(s.policy.MaxAmount.StringFixed(2))
	}
	return nil
}

func (s *LedgerServiceImpl) resolveRecipient(ctx context.Context, identifier string) (*domain.Account, error) {
	recipient, err := s.accountRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve recipient: %w", err))
	}
	if recipient == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	if recipient.Locked {
		return nil, apperror.ErrRecipientLocked()
	}
	return recipient, nil
}

// authorizePin confirms the mover's transaction PIN. Failed attempts are
// counted in the limiter; limiter outages never block authorization.
func (s *LedgerServiceImpl) authorizePin(ctx context.Context, account *domain.Account, pin string) error {
	allowed, err := s.pinLimiter.Allow(ctx, account.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("pin limiter check failed, allowing attempt")
	} else if !allowed {
		return apperror.ErrTooManyPinAttempts()
	}

	if !account.HasPin() {
		return apperror.ErrPinNotSet()
	}

	ok, err := s.hashSvc.Verify(pin, account.PinHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}
	if !ok {
		if err := s.pinLimiter.RecordFailure(ctx, account.ID); err != nil {
			s.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to record pin failure")
		}
		return apperror.ErrInvalidPin()
	}

	if err := s.pinLimiter.Reset(ctx, account.ID); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to reset pin counter")
	}
	return nil
}

func (s *LedgerServiceImpl) newMovement(id string, kind domain.MovementKind, source, dest uuid.UUID, amount, fee decimal.Decimal, note *string) *domain.Movement {
	if id == "" {
		id = domain.NewMovementID()
	}
	return &domain.Movement{
		ID:            id,
		Kind:          kind,
		SourceID:      source,
		DestinationID: dest,
		Amount:        amount,
		Fee:           fee,
		Status:        domain.MovementStatusCompleted,
		Description:   note,
		CreatedAt:     time.Now().UTC(),
	}
}

// apply performs the atomic unit: row-lock the affected accounts, adjust both
// balances and append the movement, all in one database transaction. Any
// failure rolls the whole unit back; no partial balance effect ever commits.
// srcDelta is the signed change to the source wallet, dstDelta to the
// destination (ignored for self-movements).
func (s *LedgerServiceImpl) apply(ctx context.Context, m *domain.Movement, srcDelta, dstDelta decimal.Decimal) error {
	// Fast-path duplicate check; the log's unique constraint is authoritative.
	seen, err := s.idempCache.Seen(ctx, m.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("movement_id", m.ID).Msg("idempotency cache check failed, falling through to log constraint")
	}
	if seen {
		return apperror.ErrDuplicateMovement()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock rows in deterministic order so concurrent transfers between the
	// same pair of accounts cannot deadlock.
	first, second := m.SourceID, m.DestinationID
	if !m.IsSelf() && second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		if _, ok := locked[id]; ok {
			continue
		}
		acct, err := s.accountRepo.GetForUpdate(ctx, dbTx, id)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock account: %w", err))
		}
		if acct == nil {
			return apperror.ErrNotFound("account")
		}
		locked[id] = acct
	}

	source := locked[m.SourceID]
	newSourceBalance := source.Balance.Add(srcDelta)
	if newSourceBalance.IsNegative() {
		return apperror.ErrInsufficientFunds()
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, source.ID, newSourceBalance); err != nil {
		return apperror.InternalError(fmt.Errorf("update source balance: %w", err))
	}

	if !m.IsSelf() {
		dest := locked[m.DestinationID]
		newDestBalance := dest.Balance.Add(dstDelta)
		if newDestBalance.IsNegative() {
			return apperror.ErrInsufficientFunds()
		}
		if err := s.accountRepo.UpdateBalance(ctx, dbTx, dest.ID, newDestBalance); err != nil {
			return apperror.InternalError(fmt.Errorf("update destination balance: %w", err))
		}
	}

	if err := s.movementRepo.Create(ctx, dbTx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateMovementID) {
			return apperror.ErrDuplicateMovement()
		}
		return apperror.InternalError(fmt.Errorf("append movement: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit: remember the id in Redis (best-effort).
	if err := s.idempCache.Remember(ctx, m.ID, movementIdempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("movement_id", m.ID).Msg("failed to cache movement id")
	}

	s.log.Info().
		Str("movement_id", m.ID).
		Str("kind", string(m.Kind)).
		Str("source_id", m.SourceID.String()).
		Str("destination_id", m.DestinationID.String()).
		Str("amount", m.Amount.StringFixed(2)).
		Str("fee", m.Fee.StringFixed(2)).
		Msg("movement applied")

	return nil
}
