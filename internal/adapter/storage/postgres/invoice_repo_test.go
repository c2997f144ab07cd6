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

func newTestInvoice() *domain.Invoice {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Invoice{
		ID:         domain.NewInvoiceID(),
		BusinessID: uuid.New(),
		CustomerID: uuid.New(),
		Amount:     decimal.RequireFromString("120.00"),
		Status:     domain.InvoiceStatusPending,
		DueDate:    now.Add(14 * 24 * time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func invoiceColumnNames() []string {
	return []string{"id", "business_id", "customer_id", "amount", "status", "description", "due_date", "movement_id", "created_at", "updated_at"}
}

func invoiceRow(inv *domain.Invoice) *pgxmock.Rows {
	return pgxmock.NewRows(invoiceColumnNames()).AddRow(
		inv.ID, inv.BusinessID, inv.CustomerID, inv.Amount, inv.Status,
		inv.Description, inv.DueDate, inv.MovementID, inv.CreatedAt, inv.UpdatedAt,
	)
}

func TestInvoiceRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice()

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(inv.ID, inv.BusinessID, inv.CustomerID, inv.Amount, inv.Status,
			inv.Description, inv.DueDate, inv.MovementID, inv.CreatedAt, inv.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), inv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice()

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE id").
		WithArgs(inv.ID).
		WillReturnRows(invoiceRow(inv))

	result, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, inv.ID, result.ID)
	assert.Nil(t, result.MovementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_UpdateStatus_Paid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	movementID := "TXN-settled"

	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(domain.InvoiceStatusPaid, &movementID, "INV-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), "INV-1", domain.InvoiceStatusPaid, &movementID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_UpdateStatus_Cancelled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)

	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(domain.InvoiceStatusCancelled, (*string)(nil), "INV-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), "INV-1", domain.InvoiceStatusCancelled, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_ListByBusiness(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice()

	mock.ExpectQuery("SELECT .+ FROM invoices").
		WithArgs(inv.BusinessID, 20, 0).
		WillReturnRows(invoiceRow(inv))

	invoices, err := repo.ListByBusiness(context.Background(), inv.BusinessID, 20, 0)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.ID, invoices[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_MarkOverdue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE invoices SET status = 'OVERDUE'").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.MarkOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
