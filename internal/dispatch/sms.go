package dispatch

import (
	"context"
	"fmt"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/sms"
	"github.com/rs/zerolog/log"
)

type SMSDispatcher struct {
	contacts    ContactReader
	sender      sms.Sender
	concurrency int
}

func NewSMSDispatcher(contacts ContactReader, sender sms.Sender, concurrency int) *SMSDispatcher {
	return &SMSDispatcher{
		contacts:    contacts,
		sender:      sender,
		concurrency: concurrency,
	}
}

func (d *SMSDispatcher) Channel() Channel {
	return ChannelSMS
}

func (d *SMSDispatcher) Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult {
	if d.sender == nil {
		// No SMS provider configured: skip the channel entirely, zero
		// counts, not an error.
		log.Debug().Str("notificationID", n.ID).Msg("no SMS provider configured, skipping channel")
		return ChannelResult{Channel: ChannelSMS}
	}

	text := fmt.Sprintf("%s: %s", n.Title, n.Message)

	outcomes := forEachRecipient(ctx, recipients, d.concurrency, func(ctx context.Context, recipient string) []DeliveryOutcome {
		outcome := DeliveryOutcome{
			Channel:   ChannelSMS,
			Recipient: recipient,
			Attempted: true,
		}

		contact, err := d.contacts.GetUserContact(ctx, recipient)
		if err != nil {
			outcome.FailureReason = fmt.Sprintf("failed to resolve contact: %v", err)
			return []DeliveryOutcome{outcome}
		}
		if contact.Phone == "" {
			outcome.FailureReason = "no phone number on file"
			return []DeliveryOutcome{outcome}
		}

		if err = d.sender.Send(ctx, contact.Phone, text); err != nil {
			outcome.FailureReason = err.Error()
			return []DeliveryOutcome{outcome}
		}

		outcome.Delivered = true
		return []DeliveryOutcome{outcome}
	})

	return collectResult(ChannelSMS, outcomes)
}
