package notification

import (
	"fmt"
	"time"
)

type DevicePlatform string

const (
	PlatformWeb     DevicePlatform = "web"
	PlatformIOS     DevicePlatform = "ios"
	PlatformAndroid DevicePlatform = "android"
)

// Device is a push-registered device belonging to a user.
type Device struct {
	Token        string         `json:"token"`
	Platform     DevicePlatform `json:"platform"`
	Active       bool           `json:"active"`
	RegisteredAt time.Time      `json:"registeredAt"`
}

// Email frequency values accepted on a preference. Never suppresses email
// delivery entirely; an empty value behaves like immediate.
const (
	EmailFrequencyImmediate = "immediate"
	EmailFrequencyDaily     = "daily"
	EmailFrequencyNever     = "never"
)

type ChannelPreferences struct {
	InApp   bool `json:"inApp"`
	Email   bool `json:"email"`
	SMS     bool `json:"sms"`
	Push    bool `json:"push"`
	Webhook bool `json:"webhook"`
}

// QuietHours is a per-user local-time window during which non-urgent
// notifications are suppressed. Start and End use "HH:MM" 24h format. When
// Start > End the window wraps across midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

// Contains reports whether the instant falls inside the quiet-hours window,
// evaluated in the user's timezone (UTC when unset or unknown). The window
// is half-open [start, end) and circular: start > end spans midnight.
func (q QuietHours) Contains(at time.Time) (bool, error) {
	if !q.Enabled {
		return false, nil
	}

	start, err := parseClock(q.Start)
	if err != nil {
		return false, fmt.Errorf("invalid quiet hours start: %w", err)
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false, fmt.Errorf("invalid quiet hours end: %w", err)
	}

	loc := time.UTC
	if q.Timezone != "" {
		loc, err = time.LoadLocation(q.Timezone)
		if err != nil {
			return false, fmt.Errorf("invalid quiet hours timezone %q: %w", q.Timezone, err)
		}
	}

	local := at.In(loc)
	now := local.Hour()*60 + local.Minute()

	if start == end {
		// Degenerate window covers nothing.
		return false, nil
	}
	if start < end {
		return now >= start && now < end, nil
	}
	// Wraps midnight, e.g. 22:00-08:00.
	return now >= start || now < end, nil
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Preference holds one user's notification settings. The dispatch engine is
// a read-only consumer; a missing record means opt-in to everything.
type Preference struct {
	UserID         string             `json:"userID"`
	Channels       ChannelPreferences `json:"channels"`
	EmailFrequency string             `json:"emailFrequency,omitempty"`
	Categories     map[Category]bool  `json:"categories,omitempty"`
	Types          map[Type]bool      `json:"types,omitempty"`
	QuietHours     QuietHours         `json:"quietHours"`
	Devices        []Device           `json:"devices,omitempty"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// CategoryEnabled reports whether the category is enabled. Categories absent
// from the map default to enabled.
func (p *Preference) CategoryEnabled(c Category) bool {
	if p.Categories == nil {
		return true
	}
	enabled, ok := p.Categories[c]
	return !ok || enabled
}

// TypeEnabled reports whether the notification type is enabled. Types absent
// from the map default to enabled.
func (p *Preference) TypeEnabled(t Type) bool {
	if p.Types == nil {
		return true
	}
	enabled, ok := p.Types[t]
	return !ok || enabled
}

// ActiveDevices returns the user's active push devices.
func (p *Preference) ActiveDevices() []Device {
	devices := make([]Device, 0, len(p.Devices))
	for _, d := range p.Devices {
		if d.Active {
			devices = append(devices, d)
		}
	}
	return devices
}
