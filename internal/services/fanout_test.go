package services_test

import (
	"context"
	"testing"

	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/adilzhanb/shiftdesk/pkg/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFanoutExcludesActor(t *testing.T) {
	store := &fakeNotificationStore{}
	sender := &fakeSender{}
	fanout := services.NewFanout(store, sender, false)

	actor := models.User{ID: primitive.NewObjectID(), Tokens: []string{"tok-actor"}}
	other := models.User{ID: primitive.NewObjectID(), Tokens: []string{"tok-other"}}

	warnings := fanout.Deliver(context.Background(), actor.ID, []models.User{actor, other}, "t", "b")
	assert.Empty(t, warnings)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, []primitive.ObjectID{other.ID}, store.notifications[0].Users)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"tok-other"}, sender.sent[0].tokens)
}

func TestFanoutIncludesActorWhenConfigured(t *testing.T) {
	store := &fakeNotificationStore{}
	sender := &fakeSender{}
	fanout := services.NewFanout(store, sender, true)

	actor := models.User{ID: primitive.NewObjectID(), Tokens: []string{"tok-actor"}}

	fanout.Deliver(context.Background(), actor.ID, []models.User{actor}, "t", "b")

	require.Len(t, store.notifications, 1)
	assert.Equal(t, []primitive.ObjectID{actor.ID}, store.notifications[0].Users)
}

func TestFanoutDedupesRecipients(t *testing.T) {
	store := &fakeNotificationStore{}
	sender := &fakeSender{}
	fanout := services.NewFanout(store, sender, false)

	user := models.User{ID: primitive.NewObjectID(), Tokens: []string{"tok"}}

	fanout.Deliver(context.Background(), primitive.NewObjectID(), []models.User{user, user, user}, "t", "b")

	require.Len(t, store.notifications, 1)
	assert.Equal(t, []primitive.ObjectID{user.ID}, store.notifications[0].Users)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"tok"}, sender.sent[0].tokens)
}

func TestFanoutEmptyRecipientSet(t *testing.T) {
	store := &fakeNotificationStore{}
	sender := &fakeSender{}
	fanout := services.NewFanout(store, sender, false)

	actor := models.User{ID: primitive.NewObjectID()}
	warnings := fanout.Deliver(context.Background(), actor.ID, []models.User{actor}, "t", "b")

	assert.Empty(t, warnings)
	assert.Empty(t, store.notifications)
	assert.Empty(t, sender.sent)
}

func TestFanoutPartialPushFailure(t *testing.T) {
	store := &fakeNotificationStore{}
	sender := &fakeSender{report: &push.Report{SuccessCount: 1, FailureCount: 1}}
	fanout := services.NewFanout(store, sender, false)

	user := models.User{ID: primitive.NewObjectID(), Tokens: []string{"tok-1", "tok-2"}}

	warnings := fanout.Deliver(context.Background(), primitive.NewObjectID(), []models.User{user}, "t", "b")

	// A partially failed multicast surfaces as a warning while the
	// notification document is still stored.
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "1 of 2")
	assert.Len(t, store.notifications, 1)
}
