package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM rejects multicast batches above this size.
const multicastLimit = 500

// FCMSender delivers notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initializes the Firebase app from a service-account
// credentials file.
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %v", err)
	}

	return &FCMSender{client: client}, nil
}

func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, n Notification) (*Report, error) {
	report := &Report{}
	for start := 0; start < len(tokens); start += multicastLimit {
		end := start + multicastLimit
		if end > len(tokens) {
			end = len(tokens)
		}

		msg := &messaging.MulticastMessage{
			Tokens: tokens[start:end],
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
		}

		resp, err := s.client.SendEachForMulticast(ctx, msg)
		if err != nil {
			return report, fmt.Errorf("failed to send multicast: %v", err)
		}
		report.SuccessCount += resp.SuccessCount
		report.FailureCount += resp.FailureCount
	}
	return report, nil
}
