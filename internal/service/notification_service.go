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

// NotificationServiceImpl implements ports.NotificationService. Notifications
// are caller-side records written after an action settles; a failed write
// never fails the action that triggered it.
type NotificationServiceImpl struct {
	notifRepo ports.NotificationRepository
	log       zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(notifRepo ports.NotificationRepository, log zerolog.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{notifRepo: notifRepo, log: log}
}

// Notify records a notification for the account. Fire-and-forget: errors are
// logged and swallowed.
func (s *NotificationServiceImpl) Notify(ctx context.Context, accountID uuid.UUID, kind domain.NotificationKind, message string) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("failed to record notification")
	}
	return nil
}

// List returns the account's notifications, most recent first.
func (s *NotificationServiceImpl) List(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	notifications, err := s.notifRepo.ListByAccount(ctx, accountID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return notifications, nil
}

// MarkRead flags one notification as read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.notifRepo.MarkRead(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("mark notification read: %w", err))
	}
	return nil
}

// MarkAllRead flags every unread notification for the account as read.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	n, err := s.notifRepo.MarkAllRead(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("mark all read: %w", err))
	}
	return n, nil
}
