package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMovement() *domain.Movement {
	note := "Lunch split"
	return &domain.Movement{
		ID:            domain.NewMovementID(),
		Kind:          domain.MovementKindTransfer,
		SourceID:      uuid.New(),
		DestinationID: uuid.New(),
		Amount:        decimal.RequireFromString("50.00"),
		Fee:           decimal.RequireFromString("0.75"),
		Status:        domain.MovementStatusCompleted,
		Description:   &note,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func movementColumnNames() []string {
	return []string{"id", "kind", "source_id", "destination_id", "amount", "fee", "status", "description", "payment_method_id", "created_at"}
}

func movementRow(m *domain.Movement) *pgxmock.Rows {
	return pgxmock.NewRows(movementColumnNames()).AddRow(
		m.ID, m.Kind, m.SourceID, m.DestinationID,
		m.Amount, m.Fee, m.Status, m.Description, m.PaymentMethodID,
		m.CreatedAt,
	)
}

func TestMovementRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := newTestMovement()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movements").
		WithArgs(m.ID, m.Kind, m.SourceID, m.DestinationID,
			m.Amount, m.Fee, m.Status, m.Description, m.PaymentMethodID,
			m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_Create_DuplicateID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := newTestMovement()

	mock.ExpectBegin()
	// Unique violation on the primary key surfaces as the domain sentinel.
	mock.ExpectExec("INSERT INTO movements").
		WithArgs(m.ID, m.Kind, m.SourceID, m.DestinationID,
			m.Amount, m.Fee, m.Status, m.Description, m.PaymentMethodID,
			m.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "movements_pkey"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, m)
	assert.ErrorIs(t, err, domain.ErrDuplicateMovementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_Create_OtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := newTestMovement()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movements").
		WithArgs(m.ID, m.Kind, m.SourceID, m.DestinationID,
			m.Amount, m.Fee, m.Status, m.Description, m.PaymentMethodID,
			m.CreatedAt).
		WillReturnError(errors.New("connection reset"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, m)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateMovementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := newTestMovement()

	mock.ExpectQuery("SELECT .+ FROM movements WHERE id").
		WithArgs(m.ID).
		WillReturnRows(movementRow(m))

	result, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.ID, result.ID)
	assert.True(t, result.Amount.Equal(m.Amount))
	assert.True(t, result.Fee.Equal(m.Fee))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM movements WHERE id").
		WithArgs("TXN-ghost").
		WillReturnRows(pgxmock.NewRows(movementColumnNames()))

	result, err := repo.GetByID(context.Background(), "TXN-ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	accountID := uuid.New()
	m1 := newTestMovement()
	m1.SourceID = accountID
	m2 := newTestMovement()
	m2.DestinationID = accountID

	rows := pgxmock.NewRows(movementColumnNames()).
		AddRow(m1.ID, m1.Kind, m1.SourceID, m1.DestinationID, m1.Amount, m1.Fee, m1.Status, m1.Description, m1.PaymentMethodID, m1.CreatedAt).
		AddRow(m2.ID, m2.Kind, m2.SourceID, m2.DestinationID, m2.Amount, m2.Fee, m2.Status, m2.Description, m2.PaymentMethodID, m2.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM movements").
		WithArgs(accountID, 20, 0).
		WillReturnRows(rows)

	movements, err := repo.ListByAccount(context.Background(), accountID, 20, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, m1.ID, movements[0].ID)
	assert.Equal(t, m2.ID, movements[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
