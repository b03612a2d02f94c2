package dispatch

import "github.com/katatrina/eduhub-BE/internal/notification"

// Aggregate merges per-channel results into the notification's persisted
// delivery block. It is a pure function of its inputs: re-running it on the
// same results yields identical totals, which keeps queue redeliveries from
// double counting.
//
// Successful follows each channel's own success definition: for in-app a
// send counts as soon as the inbox write lands (attempted minus failed),
// every other channel requires a delivered acknowledgment.
func Aggregate(totalRecipients int, results []ChannelResult) notification.DeliveryRecord {
	record := notification.DeliveryRecord{
		TotalRecipients: totalRecipients,
	}

	for _, result := range results {
		stats := notification.ChannelStats{
			Attempted: result.Attempted,
			Delivered: result.Delivered,
			Failed:    result.Failed,
		}

		switch result.Channel {
		case ChannelInApp:
			record.InApp = stats
			record.Successful += result.Attempted - result.Failed
		case ChannelEmail:
			record.Email = stats
			record.Successful += result.Delivered
		case ChannelSMS:
			record.SMS = stats
			record.Successful += result.Delivered
		case ChannelPush:
			record.Push = stats
			record.Successful += result.Delivered
		case ChannelWebhook:
			record.Webhook = stats
			record.Successful += result.Delivered
		}

		record.Failed += result.Failed
	}

	return record
}
