package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/zpmep/hmacutil"
	"resty.dev/v3"
)

// WebhookDispatcher posts the notification as JSON to each recipient's
// registered webhook URL. The payload is signed with HMAC-SHA256 so
// receivers can verify it originated from the platform.
type WebhookDispatcher struct {
	contacts    ContactReader
	client      *resty.Client
	signingKey  string
	concurrency int
}

type webhookPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	ActionURL string    `json:"actionURL,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

func NewWebhookDispatcher(contacts ContactReader, signingKey string, concurrency int) *WebhookDispatcher {
	return &WebhookDispatcher{
		contacts:    contacts,
		client:      resty.New().SetTimeout(15 * time.Second),
		signingKey:  signingKey,
		concurrency: concurrency,
	}
}

func (d *WebhookDispatcher) Channel() Channel {
	return ChannelWebhook
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult {
	payload := webhookPayload{
		ID:       n.ID,
		Title:    n.Title,
		Message:  n.Message,
		Type:     string(n.Type),
		Category: string(n.Category),
		Priority: string(n.Priority),
		SentAt:   time.Now(),
	}
	if n.Content != nil {
		payload.ActionURL = n.Content.ActionURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		// Marshalling a plain struct cannot realistically fail; treat it as
		// a whole-channel failure rather than panicking.
		return ChannelResult{Channel: ChannelWebhook}
	}
	signature := hmacutil.HexStringEncode(hmacutil.SHA256, d.signingKey, string(body))

	outcomes := forEachRecipient(ctx, recipients, d.concurrency, func(ctx context.Context, recipient string) []DeliveryOutcome {
		contact, err := d.contacts.GetUserContact(ctx, recipient)
		if err != nil {
			return []DeliveryOutcome{{
				Channel:       ChannelWebhook,
				Recipient:     recipient,
				Attempted:     true,
				FailureReason: fmt.Sprintf("failed to resolve contact: %v", err),
			}}
		}
		if contact.WebhookURL == "" {
			// No webhook registered: contributes nothing, like push with
			// zero devices.
			return nil
		}

		outcome := DeliveryOutcome{
			Channel:   ChannelWebhook,
			Recipient: recipient,
			Attempted: true,
		}

		resp, err := d.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Signature", signature).
			SetBody(body).
			Post(contact.WebhookURL)
		if err != nil {
			outcome.FailureReason = err.Error()
			return []DeliveryOutcome{outcome}
		}
		if resp.IsError() {
			outcome.FailureReason = fmt.Sprintf("webhook endpoint returned status %d", resp.StatusCode())
			return []DeliveryOutcome{outcome}
		}

		outcome.Delivered = true
		return []DeliveryOutcome{outcome}
	})

	return collectResult(ChannelWebhook, outcomes)
}
