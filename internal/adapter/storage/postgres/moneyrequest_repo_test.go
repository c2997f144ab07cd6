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

func newTestMoneyRequest() *domain.MoneyRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.MoneyRequest{
		ID:          domain.NewMoneyRequestID(),
		RequesterID: uuid.New(),
		PayerID:     uuid.New(),
		Amount:      decimal.RequireFromString("25.00"),
		Status:      domain.MoneyRequestStatusPending,
		ExpiresAt:   now.Add(72 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func moneyRequestColumnNames() []string {
	return []string{"id", "requester_id", "payer_id", "amount", "status", "description", "expires_at", "created_at", "updated_at"}
}

func TestMoneyRequestRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)
	req := newTestMoneyRequest()

	mock.ExpectExec("INSERT INTO money_requests").
		WithArgs(req.ID, req.RequesterID, req.PayerID, req.Amount, req.Status,
			req.Description, req.ExpiresAt, req.CreatedAt, req.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyRequestRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)
	req := newTestMoneyRequest()

	mock.ExpectQuery("SELECT .+ FROM money_requests WHERE id").
		WithArgs(req.ID).
		WillReturnRows(pgxmock.NewRows(moneyRequestColumnNames()).AddRow(
			req.ID, req.RequesterID, req.PayerID, req.Amount, req.Status,
			req.Description, req.ExpiresAt, req.CreatedAt, req.UpdatedAt,
		))

	result, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, req.ID, result.ID)
	assert.Equal(t, domain.MoneyRequestStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyRequestRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM money_requests WHERE id").
		WithArgs("REQ-ghost").
		WillReturnRows(pgxmock.NewRows(moneyRequestColumnNames()))

	result, err := repo.GetByID(context.Background(), "REQ-ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyRequestRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)

	mock.ExpectExec("UPDATE money_requests SET status").
		WithArgs(domain.MoneyRequestStatusDeclined, "REQ-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), "REQ-1", domain.MoneyRequestStatusDeclined)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyRequestRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)

	mock.ExpectExec("UPDATE money_requests SET status").
		WithArgs(domain.MoneyRequestStatusCancelled, "REQ-ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "REQ-ghost", domain.MoneyRequestStatusCancelled)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyRequestRepo_ExpirePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMoneyRequestRepo(mock)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE money_requests SET status = 'EXPIRED'").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.ExpirePending(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
