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
)

// MoneyRequestServiceImpl implements ports.MoneyRequestService. Requests are
// non-financial records; only acceptance touches the ledger, and it does so
// through the engine like every other movement.
type MoneyRequestServiceImpl struct {
	requestRepo ports.MoneyRequestRepository
	accountRepo ports.AccountRepository
	ledgerSvc   ports.LedgerService
	policy      LedgerPolicy
	expiry      time.Duration
	log         zerolog.Logger
}

// NewMoneyRequestService creates a new MoneyRequestServiceImpl.
func NewMoneyRequestService(
	requestRepo ports.MoneyRequestRepository,
	accountRepo ports.AccountRepository,
	ledgerSvc ports.LedgerService,
	policy LedgerPolicy,
	expiry time.Duration,
	log zerolog.Logger,
) *MoneyRequestServiceImpl {
	return &MoneyRequestServiceImpl{
		requestRepo: requestRepo,
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
		policy:      policy,
		expiry:      expiry,
		log:         log,
	}
}

// Create records a pending ask for funds addressed to the payer.
func (s *MoneyRequestServiceImpl) Create(ctx context.Context, req ports.CreateMoneyRequestRequest) (*domain.MoneyRequest, error) {
	if req.Amount.LessThan(s.policy.MinAmount) {
		return nil, apperror.ErrBelowMinimumAmount(s.policy.MinAmount.StringFixed(2))
	}
	if req.Amount.GreaterThan(s.policy.MaxAmount) {
		return nil, apperror.ErrAboveMaximumAmount(s.policy.MaxAmount.StringFixed(2))
	}

	payer, err := s.accountRepo.GetByIdentifier(ctx, req.Payer)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve payer: %w", err))
	}
	if payer == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	if payer.ID == req.RequesterID {
		return nil, apperror.ErrSelfMovementNotAllowed()
	}

	now := time.Now().UTC()
	request := &domain.MoneyRequest{
		ID:          domain.NewMoneyRequestID(),
		RequesterID: req.RequesterID,
		PayerID:     payer.ID,
		Amount:      req.Amount,
		Status:      domain.MoneyRequestStatusPending,
		Description: req.Note,
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create money request: %w", err))
	}
	return request, nil
}

// Accept settles a pending request: the payer authorizes a transfer to the
// requester with their PIN. The request flips to ACCEPTED only if the
// transfer applied.
func (s *MoneyRequestServiceImpl) Accept(ctx context.Context, requestID string, payerID uuid.UUID, pin string) (*domain.Movement, error) {
	request, err := s.actionableRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.PayerID != payerID {
		return nil, apperror.ErrForbidden()
	}

	requester, err := s.accountRepo.GetByID(ctx, request.RequesterID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find requester: %w", err))
	}
	if requester == nil {
		return nil, apperror.ErrRecipientNotFound()
	}

	movement, err := s.ledgerSvc.Transfer(ctx, ports.TransferRequest{
		SourceID:  payerID,
		Recipient: requester.Username,
		Amount:    request.Amount,
		Pin:       pin,
		Note:      request.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, domain.MoneyRequestStatusAccepted); err != nil {
		// The transfer already settled; the request record is catch-up state.
		s.log.Error().Err(err).Str("request_id", requestID).Msg("transfer applied but request status update failed")
		return movement, nil
	}
	return movement, nil
}

// Decline rejects a pending request. Only the payer may decline.
func (s *MoneyRequestServiceImpl) Decline(ctx context.Context, requestID string, payerID uuid.UUID) error {
	request, err := s.actionableRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.PayerID != payerID {
		return apperror.ErrForbidden()
	}
	if err := s.requestRepo.UpdateStatus(ctx, requestID, domain.MoneyRequestStatusDeclined); err != nil {
		return apperror.InternalError(fmt.Errorf("decline request: %w", err))
	}
	return nil
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (s *MoneyRequestServiceImpl) Cancel(ctx context.Context, requestID string, requesterID uuid.UUID) error {
	request, err := s.actionableRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RequesterID != requesterID {
		return apperror.ErrForbidden()
	}
	if err := s.requestRepo.UpdateStatus(ctx, requestID, domain.MoneyRequestStatusCancelled); err != nil {
		return apperror.InternalError(fmt.Errorf("cancel request: %w", err))
	}
	return nil
}

// ListByAccount returns requests where the account is requester or payer.
func (s *MoneyRequestServiceImpl) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.MoneyRequest, error) {
	requests, err := s.requestRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list requests: %w", err))
	}
	return requests, nil
}

// ExpirePending sweeps requests past their expiry window into EXPIRED.
func (s *MoneyRequestServiceImpl) ExpirePending(ctx context.Context) (int64, error) {
	n, err := s.requestRepo.ExpirePending(ctx, time.Now().UTC())
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("expire requests: %w", err))
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("expired pending money requests")
	}
	return n, nil
}

func (s *MoneyRequestServiceImpl) actionableRequest(ctx context.Context, requestID string) (*domain.MoneyRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find request: %w", err))
	}
	if request == nil {
		return nil, apperror.ErrNotFound("money request")
	}
	if !request.IsActionable(time.Now().UTC()) {
		return nil, apperror.ErrRequestNotPending()
	}
	return request, nil
}
