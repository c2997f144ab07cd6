package postgres

import (
	"context"
	"testing"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan() *domain.LoanApplication {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.LoanApplication{
		ID:         domain.NewLoanID(),
		BusinessID: uuid.New(),
		Amount:     decimal.RequireFromString("5000.00"),
		TermMonths: 12,
		Purpose:    "inventory restock",
		Status:     domain.LoanStatusPending,
		CreatedAt:  now,
	}
}

func loanColumnNames() []string {
	return []string{"id", "business_id", "amount", "term_months", "purpose", "status", "decided_at", "created_at"}
}

func loanRow(l *domain.LoanApplication) *pgxmock.Rows {
	return pgxmock.NewRows(loanColumnNames()).AddRow(
		l.ID, l.BusinessID, l.Amount, l.TermMonths, l.Purpose,
		l.Status, l.DecidedAt, l.CreatedAt,
	)
}

func TestLoanRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)
	loan := newTestLoan()

	mock.ExpectExec("INSERT INTO loan_applications").
		WithArgs(loan.ID, loan.BusinessID, loan.Amount, loan.TermMonths, loan.Purpose,
			loan.Status, loan.DecidedAt, loan.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), loan)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)
	loan := newTestLoan()

	mock.ExpectQuery("SELECT .+ FROM loan_applications WHERE id").
		WithArgs(loan.ID).
		WillReturnRows(loanRow(loan))

	result, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, loan.ID, result.ID)
	assert.Equal(t, domain.LoanStatusPending, result.Status)
	assert.Nil(t, result.DecidedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM loan_applications WHERE id").
		WithArgs("LOAN-missing").
		WillReturnRows(pgxmock.NewRows(loanColumnNames()))

	result, err := repo.GetByID(context.Background(), "LOAN-missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)
	decidedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectExec("UPDATE loan_applications SET status").
		WithArgs(domain.LoanStatusApproved, decidedAt, "LOAN-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), "LOAN-1", domain.LoanStatusApproved, decidedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)
	decidedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE loan_applications SET status").
		WithArgs(domain.LoanStatusRejected, decidedAt, "LOAN-missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "LOAN-missing", domain.LoanStatusRejected, decidedAt)
	assert.ErrorContains(t, err, "loan application not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepo_ListByBusiness(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLoanRepo(mock)
	businessID := uuid.New()

	first := newTestLoan()
	first.BusinessID = businessID
	second := newTestLoan()
	second.BusinessID = businessID
	second.Status = domain.LoanStatusApproved
	decidedAt := second.CreatedAt.Add(time.Hour)
	second.DecidedAt = &decidedAt

	rows := pgxmock.NewRows(loanColumnNames()).
		AddRow(second.ID, second.BusinessID, second.Amount, second.TermMonths, second.Purpose,
			second.Status, second.DecidedAt, second.CreatedAt).
		AddRow(first.ID, first.BusinessID, first.Amount, first.TermMonths, first.Purpose,
			first.Status, first.DecidedAt, first.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM loan_applications").
		WithArgs(businessID, 20, 0).
		WillReturnRows(rows)

	loans, err := repo.ListByBusiness(context.Background(), businessID, 20, 0)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, second.ID, loans[0].ID)
	require.NotNil(t, loans[0].DecidedAt)
	assert.Equal(t, first.ID, loans[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
