package services

import (
	"context"
	"fmt"

	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/pkg/push"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MutationResult is the structured outcome of a mutation: a short status
// message plus warnings for side effects that failed after the primary
// write succeeded. A non-empty Warnings list means partial success, never
// overall failure.
type MutationResult struct {
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *MutationResult) addWarnings(warnings []string) {
	r.Warnings = append(r.Warnings, warnings...)
}

// Fanout writes notification documents and dispatches push multicasts for
// a recipient set. Both steps run after the primary mutation and are
// best-effort: failures come back as warning strings, never as errors.
type Fanout struct {
	notifications NotificationStore
	sender        push.Sender
	includeActor  bool
}

// NewFanout builds a Fanout. includeActor controls whether the acting user
// stays in recipient sets they would otherwise belong to.
func NewFanout(notifications NotificationStore, sender push.Sender, includeActor bool) *Fanout {
	return &Fanout{
		notifications: notifications,
		sender:        sender,
		includeActor:  includeActor,
	}
}

// Deliver addresses one notification to the recipient set: one stored
// notification document plus one push multicast over every recipient
// device token. Duplicate recipients are collapsed.
func (f *Fanout) Deliver(ctx context.Context, actorID primitive.ObjectID, recipients []models.User, title, body string) []string {
	var warnings []string

	seen := make(map[primitive.ObjectID]bool, len(recipients))
	var users []primitive.ObjectID
	var tokens []string
	for _, r := range recipients {
		if !f.includeActor && r.ID == actorID {
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		users = append(users, r.ID)
		tokens = append(tokens, r.Tokens...)
	}
	if len(users) == 0 {
		return nil
	}

	notif := &models.Notification{
		Users: users,
		Title: title,
		Body:  body,
	}
	if err := f.notifications.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).WithField("title", title).Warn("Failed to store notification")
		warnings = append(warnings, fmt.Sprintf("notification %q was not stored: %v", title, err))
	}

	report, err := f.sender.SendMulticast(ctx, tokens, push.Notification{Title: title, Body: body})
	if err != nil {
		logrus.WithError(err).WithField("title", title).Warn("Push dispatch failed")
		warnings = append(warnings, fmt.Sprintf("push %q was not delivered: %v", title, err))
	} else if report.FailureCount > 0 {
		warnings = append(warnings, fmt.Sprintf("push %q failed for %d of %d devices",
			title, report.FailureCount, report.FailureCount+report.SuccessCount))
	}

	return warnings
}
