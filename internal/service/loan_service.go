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

// LoanServiceImpl implements ports.LoanService. Applying is gated on the
// account kind being BUSINESS; the decision flow is record keeping only and
// never touches the ledger.
type LoanServiceImpl struct {
	loanRepo    ports.LoanRepository
	accountRepo ports.AccountRepository
	log         zerolog.Logger
}

// NewLoanService creates a new LoanServiceImpl.
func NewLoanService(loanRepo ports.LoanRepository, accountRepo ports.AccountRepository, log zerolog.Logger) *LoanServiceImpl {
	return &LoanServiceImpl{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		log:         log,
	}
}

// Apply files a loan application for a business account.
func (s *LoanServiceImpl) Apply(ctx context.Context, req ports.LoanApplicationRequest) (*domain.LoanApplication, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation("loan amount must be positive")
	}
	if req.TermMonths <= 0 {
		return nil, apperror.Validation("loan term must be positive")
	}

	business, err := s.accountRepo.GetByID(ctx, req.BusinessID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find business: %w", err))
	}
	if business == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !business.IsBusiness() {
		return nil, apperror.ErrBusinessAccountRequired()
	}

	loan := &domain.LoanApplication{
		ID:         domain.NewLoanID(),
		BusinessID: business.ID,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
		Status:     domain.LoanStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create loan application: %w", err))
	}
	return loan, nil
}

// Decide approves or rejects a pending application. The applying business
// is never its own underwriter.
func (s *LoanServiceImpl) Decide(ctx context.Context, loanID string, deciderID uuid.UUID, approve bool) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find loan: %w", err))
	}
	if loan == nil {
		return nil, apperror.ErrNotFound("loan application")
	}
	if loan.BusinessID == deciderID {
		return nil, apperror.ErrForbidden()
	}
	if loan.IsDecided() {
		return nil, apperror.ErrLoanAlreadyDecided()
	}

	status := domain.LoanStatusRejected
	if approve {
		status = domain.LoanStatusApproved
	}
	now := time.Now().UTC()
	if err := s.loanRepo.UpdateStatus(ctx, loanID, status, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decide loan: %w", err))
	}

	loan.Status = status
	loan.DecidedAt = &now
	s.log.Info().Str("loan_id", loanID).Str("status", string(status)).Msg("loan application decided")
	return loan, nil
}

// ListByBusiness returns the business's applications, most recent first.
func (s *LoanServiceImpl) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.LoanApplication, error) {
	loans, err := s.loanRepo.ListByBusiness(ctx, businessID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list loans: %w", err))
	}
	return loans, nil
}
