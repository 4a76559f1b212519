package cron

import (
	"context"

	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs schedules the daily cleanup of expired
// notification documents.
func StartNotificationCronJobs(notificationService *services.NotificationService) {
	c := cron.New()

	c.AddFunc("@daily", func() {
		err := notificationService.DeleteExpiredNotifications(context.Background())
		if err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	})

	c.Start()
}
