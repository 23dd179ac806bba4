package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

// Notifier delivers in-app notifications. Delivery is best effort: a failed
// notification never fails the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, groupID string, kind models.NotificationKind, message string)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userIDs []string, groupID string, kind models.NotificationKind, message string) {
	if len(userIDs) == 0 {
		return
	}
	notifications := make([]models.Notification, len(userIDs))
	for i, userID := range userIDs {
		notifications[i] = models.Notification{
			ID:      uuid.NewString(),
			UserID:  userID,
			GroupID: groupID,
			Kind:    kind,
			Message: message,
		}
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		zap.L().Warn("Failed to create notifications",
			zap.String("group_id", groupID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.repo.GetByUserID(ctx, userID, unreadOnly, DefaultNotificationLimit)
	if err != nil {
		return nil, apperrors.DatabaseError("listing notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.DatabaseError("counting unread notifications", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NotFound("Notification")
		}
		return apperrors.DatabaseError("marking notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apperrors.DatabaseError("marking notifications read", err)
	}
	return nil
}
