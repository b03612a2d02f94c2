package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/mailer"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

// ContactReader resolves a recipient's delivery addresses.
type ContactReader interface {
	GetUserContact(ctx context.Context, userID string) (db.UserContact, error)
}

type EmailDispatcher struct {
	contacts    ContactReader
	sender      mailer.Sender
	concurrency int
}

func NewEmailDispatcher(contacts ContactReader, sender mailer.Sender, concurrency int) *EmailDispatcher {
	return &EmailDispatcher{
		contacts:    contacts,
		sender:      sender,
		concurrency: concurrency,
	}
}

func (d *EmailDispatcher) Channel() Channel {
	return ChannelEmail
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult {
	outcomes := forEachRecipient(ctx, recipients, d.concurrency, func(ctx context.Context, recipient string) []DeliveryOutcome {
		outcome := DeliveryOutcome{
			Channel:   ChannelEmail,
			Recipient: recipient,
			Attempted: true,
		}

		contact, err := d.contacts.GetUserContact(ctx, recipient)
		if err != nil {
			outcome.FailureReason = fmt.Sprintf("failed to resolve contact: %v", err)
			return []DeliveryOutcome{outcome}
		}
		if contact.Email == "" {
			outcome.FailureReason = "no email address on file"
			return []DeliveryOutcome{outcome}
		}

		msg := mailer.Message{
			To:      contact.Email,
			Subject: n.Title,
			Text:    emailText(n),
		}
		if n.Content != nil && n.Content.HTML != "" {
			msg.HTML = n.Content.HTML
		}

		if err = d.sender.Send(ctx, msg); err != nil {
			if errors.Is(err, mailer.ErrHardBounce) {
				log.Warn().Str("recipient", recipient).Str("notificationID", n.ID).Msg("email hard bounced")
				outcome.FailureReason = "bounced"
			} else {
				outcome.FailureReason = err.Error()
			}
			return []DeliveryOutcome{outcome}
		}

		outcome.Delivered = true
		return []DeliveryOutcome{outcome}
	})

	return collectResult(ChannelEmail, outcomes)
}

func emailText(n *notification.Notification) string {
	text := n.Message
	if n.Content != nil && n.Content.ActionURL != "" {
		text = fmt.Sprintf("%s\n\n%s", text, n.Content.ActionURL)
	}
	if !n.CreatedAt.IsZero() {
		text = fmt.Sprintf("%s\n\nSent %s.", text, humanize.Time(n.CreatedAt))
	}
	return text
}
