package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

// PreferenceReader is the read-only slice of the store the filter needs.
type PreferenceReader interface {
	GetPreference(ctx context.Context, userID string) (*notification.Preference, error)
}

// PreferenceFilter narrows the resolved recipient list using each user's
// stored preferences. Category, type and quiet-hours checks are
// channel-independent and decide eligibility outright; the per-channel
// toggles are carried on the result so dispatch can drop a recipient from
// the individual channels they disabled.
type PreferenceFilter struct {
	preferences PreferenceReader
	now         func() time.Time
}

func NewPreferenceFilter(preferences PreferenceReader) *PreferenceFilter {
	return &PreferenceFilter{
		preferences: preferences,
		now:         time.Now,
	}
}

// FilterResult holds the eligible recipients plus each user's stored
// preference, so per-channel exclusions do not need a second preference
// read.
type FilterResult struct {
	eligible []string
	prefs    map[string]*notification.Preference
}

// Recipients returns every eligible recipient across all channels. Its
// length is the delivery record's totalRecipients.
func (r *FilterResult) Recipients() []string {
	return r.eligible
}

// ForChannel returns the eligible recipients who have not disabled the
// channel in their preferences.
func (r *FilterResult) ForChannel(channel Channel) []string {
	recipients := make([]string, 0, len(r.eligible))
	for _, userID := range r.eligible {
		if pref, ok := r.prefs[userID]; ok && !channelOptedIn(pref, channel) {
			continue
		}
		recipients = append(recipients, userID)
	}
	return recipients
}

// Filter returns the recipients eligible for the notification. A recipient
// with no preference record is eligible (fail-open), and any error while
// evaluating one recipient's preferences also defaults to eligible so one
// bad record never blocks delivery to the others.
func (f *PreferenceFilter) Filter(ctx context.Context, n *notification.Notification, recipients []string) *FilterResult {
	result := &FilterResult{
		eligible: make([]string, 0, len(recipients)),
		prefs:    make(map[string]*notification.Preference),
	}
	for _, userID := range recipients {
		pref, ok := f.eligible(ctx, n, userID)
		if !ok {
			continue
		}
		result.eligible = append(result.eligible, userID)
		if pref != nil {
			result.prefs[userID] = pref
		}
	}
	return result
}

func (f *PreferenceFilter) eligible(ctx context.Context, n *notification.Notification, userID string) (*notification.Preference, bool) {
	pref, err := f.preferences.GetPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, true
		}
		log.Warn().Err(err).Str("userID", userID).Msg("failed to evaluate preferences, defaulting to eligible")
		return nil, true
	}

	if !pref.CategoryEnabled(n.Category) {
		return nil, false
	}
	if !pref.TypeEnabled(n.Type) {
		return nil, false
	}

	if n.Priority != notification.PriorityUrgent {
		inQuietHours, err := pref.QuietHours.Contains(f.now())
		if err != nil {
			log.Warn().Err(err).Str("userID", userID).Msg("failed to evaluate quiet hours, defaulting to eligible")
			return pref, true
		}
		if inQuietHours {
			return nil, false
		}
	}

	return pref, true
}

// channelOptedIn applies the per-user channel toggles from a stored
// preference. A zero-value channels block means the user never chose
// channels and leaves every channel enabled, matching the absent-key
// default of the category and type maps.
func channelOptedIn(pref *notification.Preference, channel Channel) bool {
	if channel == ChannelEmail && pref.EmailFrequency == notification.EmailFrequencyNever {
		return false
	}
	if pref.Channels == (notification.ChannelPreferences{}) {
		return true
	}
	switch channel {
	case ChannelInApp:
		return pref.Channels.InApp
	case ChannelEmail:
		return pref.Channels.Email
	case ChannelSMS:
		return pref.Channels.SMS
	case ChannelPush:
		return pref.Channels.Push
	case ChannelWebhook:
		return pref.Channels.Webhook
	default:
		return false
	}
}
