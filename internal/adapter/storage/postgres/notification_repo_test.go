package postgres

import (
	"context"
	"testing"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotification() *domain.Notification {
	return &domain.Notification{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Kind:      domain.NotificationKindMovement,
		Message:   "You received 50.00 from alice",
		Read:      false,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func notificationColumnNames() []string {
	return []string{"id", "account_id", "kind", "message", "read", "created_at"}
}

func TestNotificationRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	n := newTestNotification()

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(n.ID, n.AccountID, n.Kind, n.Message, n.Read, n.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), n)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	accountID := uuid.New()

	unread := newTestNotification()
	unread.AccountID = accountID
	seen := newTestNotification()
	seen.AccountID = accountID
	seen.Kind = domain.NotificationKindSecurity
	seen.Read = true

	rows := pgxmock.NewRows(notificationColumnNames()).
		AddRow(unread.ID, unread.AccountID, unread.Kind, unread.Message, unread.Read, unread.CreatedAt).
		AddRow(seen.ID, seen.AccountID, seen.Kind, seen.Message, seen.Read, seen.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM notifications").
		WithArgs(accountID, false, 20, 0).
		WillReturnRows(rows)

	notifications, err := repo.ListByAccount(context.Background(), accountID, false, 20, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, domain.NotificationKindMovement, notifications[0].Kind)
	assert.True(t, notifications[1].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListByAccount_UnreadOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	accountID := uuid.New()

	unread := newTestNotification()
	unread.AccountID = accountID

	rows := pgxmock.NewRows(notificationColumnNames()).
		AddRow(unread.ID, unread.AccountID, unread.Kind, unread.Message, unread.Read, unread.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM notifications").
		WithArgs(accountID, true, 20, 0).
		WillReturnRows(rows)

	notifications, err := repo.ListByAccount(context.Background(), accountID, true, 20, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE notifications SET read = TRUE").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkRead(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkRead_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE notifications SET read = TRUE").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MarkRead(context.Background(), id)
	assert.ErrorContains(t, err, "notification not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkAllRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	accountID := uuid.New()

	mock.ExpectExec("UPDATE notifications SET read = TRUE").
		WithArgs(accountID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	updated, err := repo.MarkAllRead(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
