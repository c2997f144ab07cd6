package service

import (
	"context"
	"fmt"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportingServiceImpl implements ports.ReportingService: read-only
// projections over the ledger and the movement log.
type ReportingServiceImpl struct {
	accountRepo  ports.AccountRepository
	movementRepo ports.MovementRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(accountRepo ports.AccountRepository, movementRepo ports.MovementRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

// Balance returns the account's current wallet balance.
func (s *ReportingServiceImpl) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrNotFound("account")
	}
	return account.Balance, nil
}

// History lists movements touching the account, most recent first.
func (s *ReportingServiceImpl) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error) {
	movements, err := s.movementRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list movements: %w", err))
	}
	return movements, nil
}
