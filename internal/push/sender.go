package push

import "context"

// Payload is the platform-independent push message.
type Payload struct {
	NotificationID string
	Title          string
	Body           string
	Priority       string
	ActionURL      string
}

// MobileSender delivers push messages to ios/android device tokens.
type MobileSender interface {
	Send(ctx context.Context, deviceToken string, payload Payload) error
}

// WebSender delivers push messages to web-push subscriptions.
type WebSender interface {
	Send(ctx context.Context, subscriptionToken string, payload Payload) error
}
