package sms

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

// HTTPGatewaySender submits messages to an HTTP SMS gateway. The gateway
// accepts a JSON body {"to": ..., "message": ...} and returns a JSON status.
type HTTPGatewaySender struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

type gatewayResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewHTTPGatewaySender(baseURL, apiKey string) *HTTPGatewaySender {
	return &HTTPGatewaySender{
		client:  resty.New(),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (s *HTTPGatewaySender) Send(ctx context.Context, phoneNumber, message string) error {
	var result gatewayResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetBody(map[string]string{
			"to":      phoneNumber,
			"message": message,
		}).
		SetResult(&result).
		Post(s.baseURL + "/messages")
	if err != nil {
		return fmt.Errorf("failed to call SMS gateway: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("SMS gateway error: status code %d, body: %s", resp.StatusCode(), resp.String())
	}
	if result.Status != "" && result.Status != "queued" && result.Status != "sent" {
		return fmt.Errorf("SMS gateway rejected message: %s", result.Message)
	}

	return nil
}
