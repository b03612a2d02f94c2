package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	results := []ChannelResult{
		{Channel: ChannelInApp, Attempted: 4, Delivered: 2, Failed: 1},
		{Channel: ChannelEmail, Attempted: 4, Delivered: 3, Failed: 1},
		{Channel: ChannelSMS},
		{Channel: ChannelPush, Attempted: 5, Delivered: 4, Failed: 1},
		{Channel: ChannelWebhook, Attempted: 2, Delivered: 2},
	}

	record := Aggregate(4, results)

	require.Equal(t, 4, record.TotalRecipients)
	require.Equal(t, 4, record.InApp.Attempted)
	require.Equal(t, 3, record.Email.Delivered)
	require.Equal(t, 0, record.SMS.Attempted)
	require.Equal(t, 5, record.Push.Attempted)
	require.Equal(t, 2, record.Webhook.Delivered)

	// In-app counts attempted minus failed, the rest count delivered:
	// (4-1) + 3 + 0 + 4 + 2.
	require.Equal(t, 12, record.Successful)
	require.Equal(t, 3, record.Failed)
}

func TestAggregateIsIdempotent(t *testing.T) {
	results := []ChannelResult{
		{Channel: ChannelInApp, Attempted: 3, Delivered: 1, Failed: 1},
		{Channel: ChannelEmail, Attempted: 3, Delivered: 2, Failed: 1},
	}

	first := Aggregate(3, results)
	second := Aggregate(3, results)

	require.Equal(t, first, second)
}

func TestAggregateEmpty(t *testing.T) {
	record := Aggregate(0, nil)
	require.Zero(t, record.TotalRecipients)
	require.Zero(t, record.Successful)
	require.Zero(t, record.Failed)
}

func TestCollectResult(t *testing.T) {
	outcomes := []DeliveryOutcome{
		{Channel: ChannelEmail, Recipient: "u1", Attempted: true, Delivered: true},
		{Channel: ChannelEmail, Recipient: "u2", Attempted: true, FailureReason: "bounced"},
		{Channel: ChannelEmail, Recipient: "u3", Attempted: true, Delivered: true},
	}

	result := collectResult(ChannelEmail, outcomes)
	require.Equal(t, ChannelEmail, result.Channel)
	require.Equal(t, 3, result.Attempted)
	require.Equal(t, 2, result.Delivered)
	require.Equal(t, 1, result.Failed)
}
