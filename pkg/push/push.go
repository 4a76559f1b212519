// Package push sends fire-and-forget push notifications to device tokens.
// Delivery is always best-effort: primary state must never depend on it.
package push

import "context"

// Notification is the visible title/body pair of a push message.
type Notification struct {
	Title string
	Body  string
}

// Report summarizes a multicast dispatch.
type Report struct {
	SuccessCount int
	FailureCount int
}

// Sender dispatches one notification to a set of device tokens.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification) (*Report, error)
}

// NoopSender is used when no push credentials are configured.
type NoopSender struct{}

func (NoopSender) SendMulticast(ctx context.Context, tokens []string, n Notification) (*Report, error) {
	return &Report{}, nil
}
