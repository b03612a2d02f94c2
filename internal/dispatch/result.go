package dispatch

// Channel identifies one delivery mechanism.
type Channel string

const (
	ChannelInApp   Channel = "in_app"
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// DeliveryOutcome records one delivery attempt for one recipient (or one
// device, for push). Outcomes are transient: they are folded into the
// notification's aggregate delivery record and never persisted individually.
type DeliveryOutcome struct {
	Channel       Channel
	Recipient     string
	Attempted     bool
	Delivered     bool
	FailureReason string
}

// ChannelResult is the uniform per-channel outcome shape every dispatcher
// returns.
type ChannelResult struct {
	Channel   Channel
	Attempted int
	Delivered int
	Failed    int
	Outcomes  []DeliveryOutcome
}

// collectResult folds individual outcomes into a ChannelResult.
func collectResult(channel Channel, outcomes []DeliveryOutcome) ChannelResult {
	result := ChannelResult{
		Channel:  channel,
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Attempted {
			result.Attempted++
		}
		if outcome.Delivered {
			result.Delivered++
		}
		if outcome.FailureReason != "" {
			result.Failed++
		}
	}
	return result
}
