package push

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

// WebPushSender submits web-push deliveries to the push relay, which holds
// the VAPID keys and talks to the browser push services.
type WebPushSender struct {
	client   *resty.Client
	relayURL string
	apiKey   string
}

func NewWebPushSender(relayURL, apiKey string) *WebPushSender {
	return &WebPushSender{
		client:   resty.New(),
		relayURL: relayURL,
		apiKey:   apiKey,
	}
}

func (s *WebPushSender) Send(ctx context.Context, subscriptionToken string, payload Payload) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetBody(map[string]string{
			"subscription":   subscriptionToken,
			"title":          payload.Title,
			"body":           payload.Body,
			"notificationID": payload.NotificationID,
			"actionURL":      payload.ActionURL,
		}).
		Post(s.relayURL + "/send")
	if err != nil {
		return fmt.Errorf("failed to call web-push relay: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("web-push relay error: status code %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
