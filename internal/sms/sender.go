package sms

import "context"

// Sender is the SMS transport contract. The dispatch engine treats a nil
// Sender as "no SMS provider configured" and skips the channel entirely.
type Sender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}
