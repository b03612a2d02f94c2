package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/katatrina/eduhub-BE/internal/notification"
)

const getPreference = `
SELECT user_id, channels, email_frequency, categories, types, quiet_hours, updated_at
FROM notification_preferences
WHERE user_id = $1
`

// GetPreference loads one user's notification preferences, including their
// registered push devices. Returns ErrRecordNotFound when the user has never
// saved preferences (callers treat that as opt-in to everything).
func (store *SQLStore) GetPreference(ctx context.Context, userID string) (*notification.Preference, error) {
	var (
		pref       notification.Preference
		channels   []byte
		categories []byte
		types      []byte
		quietHours []byte
	)

	row := store.connPool.QueryRow(ctx, getPreference, userID)
	err := row.Scan(&pref.UserID, &channels, &pref.EmailFrequency, &categories, &types, &quietHours, &pref.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(channels, &pref.Channels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel preferences: %w", err)
	}
	if len(categories) > 0 {
		if err = json.Unmarshal(categories, &pref.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category preferences: %w", err)
		}
	}
	if len(types) > 0 {
		if err = json.Unmarshal(types, &pref.Types); err != nil {
			return nil, fmt.Errorf("failed to unmarshal type preferences: %w", err)
		}
	}
	if len(quietHours) > 0 {
		if err = json.Unmarshal(quietHours, &pref.QuietHours); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiet hours: %w", err)
		}
	}

	pref.Devices, err = store.ListActiveDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}

	return &pref, nil
}

const upsertPreference = `
INSERT INTO notification_preferences (user_id, channels, email_frequency, categories, types, quiet_hours)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE
SET channels = EXCLUDED.channels,
    email_frequency = EXCLUDED.email_frequency,
    categories = EXCLUDED.categories,
    types = EXCLUDED.types,
    quiet_hours = EXCLUDED.quiet_hours,
    updated_at = now()
`

func (store *SQLStore) UpsertPreference(ctx context.Context, pref *notification.Preference) error {
	channels, err := json.Marshal(pref.Channels)
	if err != nil {
		return fmt.Errorf("failed to marshal channel preferences: %w", err)
	}
	categories, err := json.Marshal(pref.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal category preferences: %w", err)
	}
	types, err := json.Marshal(pref.Types)
	if err != nil {
		return fmt.Errorf("failed to marshal type preferences: %w", err)
	}
	quietHours, err := json.Marshal(pref.QuietHours)
	if err != nil {
		return fmt.Errorf("failed to marshal quiet hours: %w", err)
	}

	_, err = store.connPool.Exec(ctx, upsertPreference,
		pref.UserID, channels, pref.EmailFrequency, categories, types, quietHours)
	return err
}
