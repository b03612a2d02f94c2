package dispatch

import (
	"context"

	"github.com/katatrina/eduhub-BE/internal/event"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/session"
	"github.com/rs/zerolog/log"
)

// InboxWriter persists one in-app notification document per recipient.
type InboxWriter interface {
	Add(ctx context.Context, recipientID string, n *notification.Notification) error
}

// InAppDispatcher delivers in-app notifications: every recipient gets an
// inbox document, and recipients with a live session additionally get a
// real-time event pushed to their stream.
type InAppDispatcher struct {
	sessions    session.Registry
	events      event.EventSender
	inbox       InboxWriter
	concurrency int
}

func NewInAppDispatcher(sessions session.Registry, events event.EventSender, inbox InboxWriter, concurrency int) *InAppDispatcher {
	return &InAppDispatcher{
		sessions:    sessions,
		events:      events,
		inbox:       inbox,
		concurrency: concurrency,
	}
}

func (d *InAppDispatcher) Channel() Channel {
	return ChannelInApp
}

func (d *InAppDispatcher) Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult {
	payload := event.NotificationPayload{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Priority:  string(n.Priority),
		CreatedAt: n.CreatedAt,
	}

	outcomes := forEachRecipient(ctx, recipients, d.concurrency, func(ctx context.Context, recipient string) []DeliveryOutcome {
		// Attempted regardless of session presence.
		outcome := DeliveryOutcome{
			Channel:   ChannelInApp,
			Recipient: recipient,
			Attempted: true,
		}

		if err := d.inbox.Add(ctx, recipient, n); err != nil {
			log.Error().Err(err).Str("notificationID", n.ID).Str("recipient", recipient).
				Msg("failed to write inbox notification")
			outcome.FailureReason = err.Error()
			return []DeliveryOutcome{outcome}
		}

		sessionID, ok, err := d.sessions.Lookup(ctx, recipient)
		if err != nil {
			log.Warn().Err(err).Str("recipient", recipient).Msg("session registry lookup failed")
			return []DeliveryOutcome{outcome}
		}
		if !ok {
			// Offline: the inbox document is waiting for their next visit.
			return []DeliveryOutcome{outcome}
		}

		d.events.Broadcast(event.Event{
			Topic: event.UserTopic(recipient),
			Type:  event.EventTypeNotification,
			Data:  payload,
		})
		log.Debug().Str("recipient", recipient).Str("sessionID", sessionID).
			Str("notificationID", n.ID).Msg("pushed real-time notification")

		outcome.Delivered = true
		return []DeliveryOutcome{outcome}
	})

	return collectResult(ChannelInApp, outcomes)
}
