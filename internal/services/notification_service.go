package services

import (
	"context"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService is the user-facing side of the notifications
// collection: listing, read tracking and cleanup. Writing happens through
// the Fanout attached to the mutating services.
type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// GetUserNotifications returns all unexpired notifications addressed to a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid user id")
	}
	return s.repo.GetUserNotifications(ctx, uid)
}

// MarkNotificationAsRead records that the user viewed the notification.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notifID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.InvalidFormat("invalid user id")
	}
	nid, err := primitive.ObjectIDFromHex(notifID)
	if err != nil {
		return apperrors.InvalidFormat("invalid notification id")
	}
	return s.repo.MarkAsRead(ctx, nid, uid)
}

// DeleteNotification deletes a notification the user is addressed by.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.InvalidFormat("invalid user id")
	}
	nid, err := primitive.ObjectIDFromHex(notifID)
	if err != nil {
		return apperrors.InvalidFormat("invalid notification id")
	}
	return s.repo.DeleteNotification(ctx, nid, uid)
}

// DeleteExpiredNotifications is called periodically by the cron scheduler.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
