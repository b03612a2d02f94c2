package db

import (
	"context"

	"github.com/katatrina/eduhub-BE/internal/notification"
)

const listActiveDevices = `
SELECT token, platform, active, registered_at
FROM push_devices
WHERE user_id = $1 AND active = true AND revoked_at IS NULL
ORDER BY registered_at
`

func (store *SQLStore) ListActiveDevices(ctx context.Context, userID string) ([]notification.Device, error) {
	rows, err := store.connPool.Query(ctx, listActiveDevices, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []notification.Device
	for rows.Next() {
		var d notification.Device
		if err = rows.Scan(&d.Token, &d.Platform, &d.Active, &d.RegisteredAt); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Re-registering the same device reactivates it. A token held by a
// different user still violates push_devices_token_key and surfaces as a
// unique-violation error.
const registerDevice = `
INSERT INTO push_devices (user_id, token, platform, active)
VALUES ($1, $2, $3, true)
ON CONFLICT (user_id, token) DO UPDATE
SET platform = EXCLUDED.platform,
    active = true,
    revoked_at = NULL
`

type RegisterDeviceParams struct {
	UserID   string
	Token    string
	Platform notification.DevicePlatform
}

func (store *SQLStore) RegisterDevice(ctx context.Context, arg RegisterDeviceParams) error {
	_, err := store.connPool.Exec(ctx, registerDevice, arg.UserID, arg.Token, arg.Platform)
	return err
}

const revokeDevice = `
UPDATE push_devices
SET active = false,
    revoked_at = now()
WHERE user_id = $1 AND token = $2
`

func (store *SQLStore) RevokeDevice(ctx context.Context, userID, token string) error {
	tag, err := store.connPool.Exec(ctx, revokeDevice, userID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
