package db

import (
	"context"
)

// UserContact holds the delivery addresses a dispatcher may need for one
// recipient. Empty fields mean the user has not provided that address.
type UserContact struct {
	UserID     string
	Email      string
	Phone      string
	WebhookURL string
}

const getUserContact = `
SELECT id, COALESCE(email, ''), COALESCE(phone_number, ''), COALESCE(webhook_url, '')
FROM users
WHERE id = $1
`

func (store *SQLStore) GetUserContact(ctx context.Context, userID string) (UserContact, error) {
	var contact UserContact
	row := store.connPool.QueryRow(ctx, getUserContact, userID)
	err := row.Scan(&contact.UserID, &contact.Email, &contact.Phone, &contact.WebhookURL)
	return contact, err
}

const listUserIDsByRole = `
SELECT id
FROM users
WHERE role = $1 AND deleted_at IS NULL
`

func (store *SQLStore) ListUserIDsByRole(ctx context.Context, role string) ([]string, error) {
	return store.queryUserIDs(ctx, listUserIDsByRole, role)
}

const listUserIDsByGroup = `
SELECT user_id
FROM group_members
WHERE group_name = $1
`

func (store *SQLStore) ListUserIDsByGroup(ctx context.Context, group string) ([]string, error) {
	return store.queryUserIDs(ctx, listUserIDsByGroup, group)
}

const listActiveUserIDs = `
SELECT id
FROM users
WHERE deleted_at IS NULL
`

func (store *SQLStore) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	return store.queryUserIDs(ctx, listActiveUserIDs)
}

func (store *SQLStore) queryUserIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := store.connPool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
