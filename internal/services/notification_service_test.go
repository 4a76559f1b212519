package services_test

import (
	"context"
	"testing"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationLifecycle(t *testing.T) {
	store := &fakeNotificationStore{}
	service := services.NewNotificationService(store)

	user := primitive.NewObjectID()
	notif := models.Notification{ID: primitive.NewObjectID(), Users: []primitive.ObjectID{user}, Title: "t", Body: "b"}
	store.notifications = append(store.notifications, notif)

	list, err := service.GetUserNotifications(context.Background(), user.Hex())
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, service.MarkNotificationAsRead(context.Background(), user.Hex(), notif.ID.Hex()))
	assert.Contains(t, store.notifications[0].ReadBy, user)

	require.NoError(t, service.DeleteNotification(context.Background(), user.Hex(), notif.ID.Hex()))
	list, err = service.GetUserNotifications(context.Background(), user.Hex())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationInvalidIDs(t *testing.T) {
	service := services.NewNotificationService(&fakeNotificationStore{})

	_, err := service.GetUserNotifications(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFormat))

	err = service.MarkNotificationAsRead(context.Background(), primitive.NewObjectID().Hex(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFormat))

	err = service.DeleteNotification(context.Background(), "nope", primitive.NewObjectID().Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFormat))
}
