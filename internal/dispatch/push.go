package dispatch

import (
	"context"
	"fmt"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/push"
	"github.com/rs/zerolog/log"
)

// DeviceReader loads a recipient's active, non-revoked push devices.
type DeviceReader interface {
	ListActiveDevices(ctx context.Context, userID string) ([]notification.Device, error)
}

type PushDispatcher struct {
	devices     DeviceReader
	mobile      push.MobileSender
	web         push.WebSender
	concurrency int
}

func NewPushDispatcher(devices DeviceReader, mobile push.MobileSender, web push.WebSender, concurrency int) *PushDispatcher {
	return &PushDispatcher{
		devices:     devices,
		mobile:      mobile,
		web:         web,
		concurrency: concurrency,
	}
}

func (d *PushDispatcher) Channel() Channel {
	return ChannelPush
}

func (d *PushDispatcher) Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult {
	payload := push.Payload{
		NotificationID: n.ID,
		Title:          n.Title,
		Body:           n.Message,
		Priority:       string(n.Priority),
	}
	if n.Content != nil {
		payload.ActionURL = n.Content.ActionURL
	}

	outcomes := forEachRecipient(ctx, recipients, d.concurrency, func(ctx context.Context, recipient string) []DeliveryOutcome {
		devices, err := d.devices.ListActiveDevices(ctx, recipient)
		if err != nil {
			return []DeliveryOutcome{{
				Channel:       ChannelPush,
				Recipient:     recipient,
				Attempted:     true,
				FailureReason: fmt.Sprintf("failed to load devices: %v", err),
			}}
		}
		if len(devices) == 0 {
			// Zero active devices contributes nothing: not a failure.
			return nil
		}

		outcomes := make([]DeliveryOutcome, 0, len(devices))
		for _, device := range devices {
			outcome := DeliveryOutcome{
				Channel:   ChannelPush,
				Recipient: recipient,
				Attempted: true,
			}

			if err = d.sendToDevice(ctx, device, payload); err != nil {
				log.Warn().Err(err).Str("recipient", recipient).
					Str("platform", string(device.Platform)).Msg("push delivery failed")
				outcome.FailureReason = err.Error()
			} else {
				outcome.Delivered = true
			}
			outcomes = append(outcomes, outcome)
		}
		return outcomes
	})

	return collectResult(ChannelPush, outcomes)
}

func (d *PushDispatcher) sendToDevice(ctx context.Context, device notification.Device, payload push.Payload) error {
	switch device.Platform {
	case notification.PlatformWeb:
		if d.web == nil {
			return fmt.Errorf("no web-push transport configured")
		}
		return d.web.Send(ctx, device.Token, payload)
	case notification.PlatformIOS, notification.PlatformAndroid:
		if d.mobile == nil {
			return fmt.Errorf("no mobile push transport configured")
		}
		return d.mobile.Send(ctx, device.Token, payload)
	default:
		return fmt.Errorf("unknown device platform %q", device.Platform)
	}
}
