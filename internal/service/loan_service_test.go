package service

import (
	"context"
	"testing"
	"time"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type loanTestDeps struct {
	svc         *LoanServiceImpl
	loanRepo    *mocks.MockLoanRepository
	accountRepo *mocks.MockAccountRepository
	ctrl        *gomock.Controller
}

func setupLoanService(t *testing.T) *loanTestDeps {
	ctrl := gomock.NewController(t)
	d := &loanTestDeps{
		loanRepo:    mocks.NewMockLoanRepository(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLoanService(d.loanRepo, d.accountRepo, zerolog.Nop())
	return d
}

func TestLoanService_Apply_Success(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	businessID := uuid.New()

	d.accountRepo.EXPECT().GetByID(ctx, businessID).Return(&domain.Account{
		ID:   businessID,
		Kind: domain.AccountKindBusiness,
	}, nil)
	d.loanRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	loan, err := d.svc.Apply(ctx, ports.LoanApplicationRequest{
		BusinessID: businessID,
		Amount:     amt("50000.00"),
		TermMonths: 24,
		Purpose:    "Inventory expansion",
	})
	require.NoError(t, err)
	require.NotNil(t, loan)
	assert.Equal(t, domain.LoanStatusPending, loan.Status)
	assert.Equal(t, 24, loan.TermMonths)
	assert.Nil(t, loan.DecidedAt)
}

func TestLoanService_Apply_PersonalAccount(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()

	d.accountRepo.EXPECT().GetByID(ctx, accountID).Return(&domain.Account{
		ID:   accountID,
		Kind: domain.AccountKindPersonal,
	}, nil)

	loan, err := d.svc.Apply(ctx, ports.LoanApplicationRequest{
		BusinessID: accountID,
		Amount:     amt("1000.00"),
		TermMonths: 12,
	})
	assert.Nil(t, loan)
	assertAppError(t, err, "AUTH_006")
}

func TestLoanService_Apply_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		term   int
	}{
		{"zero amount", "0", 12},
		{"negative amount", "-5.00", 12},
		{"zero term", "1000.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLoanService(t)
			defer d.ctrl.Finish()

			loan, err := d.svc.Apply(context.Background(), ports.LoanApplicationRequest{
				BusinessID: uuid.New(),
				Amount:     amt(tt.amount),
				TermMonths: tt.term,
			})
			assert.Nil(t, loan)
			assertAppError(t, err, "VAL_000")
		})
	}
}

func TestLoanService_Decide_Approve(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.loanRepo.EXPECT().GetByID(ctx, "LOAN-1").Return(&domain.LoanApplication{
		ID:         "LOAN-1",
		BusinessID: uuid.New(),
		Status:     domain.LoanStatusPending,
	}, nil)
	d.loanRepo.EXPECT().UpdateStatus(ctx, "LOAN-1", domain.LoanStatusApproved, gomock.Any()).Return(nil)

	loan, err := d.svc.Decide(ctx, "LOAN-1", uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusApproved, loan.Status)
	require.NotNil(t, loan.DecidedAt)
	assert.WithinDuration(t, time.Now().UTC(), *loan.DecidedAt, 5*time.Second)
}

func TestLoanService_Decide_Reject(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.loanRepo.EXPECT().GetByID(ctx, "LOAN-1").Return(&domain.LoanApplication{
		ID:         "LOAN-1",
		BusinessID: uuid.New(),
		Status:     domain.LoanStatusPending,
	}, nil)
	d.loanRepo.EXPECT().UpdateStatus(ctx, "LOAN-1", domain.LoanStatusRejected, gomock.Any()).Return(nil)

	loan, err := d.svc.Decide(ctx, "LOAN-1", uuid.New(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusRejected, loan.Status)
}

func TestLoanService_Decide_ApplicantCannotDecide(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	businessID := uuid.New()
	d.loanRepo.EXPECT().GetByID(ctx, "LOAN-1").Return(&domain.LoanApplication{
		ID:         "LOAN-1",
		BusinessID: businessID,
		Status:     domain.LoanStatusPending,
	}, nil)

	// The applying business cannot approve its own application.
	loan, err := d.svc.Decide(ctx, "LOAN-1", businessID, true)
	assert.Nil(t, loan)
	assertAppError(t, err, "AUTH_007")
}

func TestLoanService_Decide_AlreadyDecided(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.loanRepo.EXPECT().GetByID(ctx, "LOAN-1").Return(&domain.LoanApplication{
		ID:         "LOAN-1",
		BusinessID: uuid.New(),
		Status:     domain.LoanStatusApproved,
	}, nil)

	loan, err := d.svc.Decide(ctx, "LOAN-1", uuid.New(), false)
	assert.Nil(t, loan)
	assertAppError(t, err, "PAY_005")
}

func TestLoanService_Decide_NotFound(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.loanRepo.EXPECT().GetByID(ctx, "LOAN-ghost").Return(nil, nil)

	loan, err := d.svc.Decide(ctx, "LOAN-ghost", uuid.New(), true)
	assert.Nil(t, loan)
	assertAppError(t, err, "VAL_007")
}

func TestLoanService_ListByBusiness(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	businessID := uuid.New()
	want := []domain.LoanApplication{{ID: "LOAN-1"}, {ID: "LOAN-2"}}

	d.loanRepo.EXPECT().ListByBusiness(ctx, businessID, 20, 0).Return(want, nil)

	got, err := d.svc.ListByBusiness(ctx, businessID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
