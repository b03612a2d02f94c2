package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/katatrina/eduhub-BE/internal/notification"
)

const createNotification = `
INSERT INTO notifications (id, recipients, title, message, content, type, category, priority, channels, send_at, timezone, recurrence, status, delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING created_at, updated_at
`

type CreateNotificationParams struct {
	ID         string
	Recipients notification.Recipients
	Title      string
	Message    string
	Content    *notification.Content
	Type       notification.Type
	Category   notification.Category
	Priority   notification.Priority
	Channels   notification.Channels
	SendAt     *time.Time
	Timezone   string
	Recurrence *notification.Recurrence
	Status     notification.Status
}

func (store *SQLStore) CreateNotification(ctx context.Context, arg CreateNotificationParams) (*notification.Notification, error) {
	recipients, err := json.Marshal(arg.Recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipients: %w", err)
	}
	channels, err := json.Marshal(arg.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal channels: %w", err)
	}
	delivery, err := json.Marshal(notification.DeliveryRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delivery record: %w", err)
	}

	var content, recurrence []byte
	if arg.Content != nil {
		if content, err = json.Marshal(arg.Content); err != nil {
			return nil, fmt.Errorf("failed to marshal content: %w", err)
		}
	}
	if arg.Recurrence != nil {
		if recurrence, err = json.Marshal(arg.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to marshal recurrence: %w", err)
		}
	}

	n := &notification.Notification{
		ID:         arg.ID,
		Recipients: arg.Recipients,
		Title:      arg.Title,
		Message:    arg.Message,
		Content:    arg.Content,
		Type:       arg.Type,
		Category:   arg.Category,
		Priority:   arg.Priority,
		Channels:   arg.Channels,
		SendAt:     arg.SendAt,
		Timezone:   arg.Timezone,
		Recurrence: arg.Recurrence,
		Status:     arg.Status,
	}

	row := store.connPool.QueryRow(ctx, createNotification,
		arg.ID, recipients, arg.Title, arg.Message, content, arg.Type, arg.Category,
		arg.Priority, channels, arg.SendAt, arg.Timezone, recurrence, arg.Status, delivery)
	if err = row.Scan(&n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}

	return n, nil
}

const getNotification = `
SELECT id, recipients, title, message, content, type, category, priority, channels, send_at, timezone, recurrence, status, sent_at, delivery, created_at, updated_at
FROM notifications
WHERE id = $1
`

func (store *SQLStore) GetNotification(ctx context.Context, id string) (*notification.Notification, error) {
	var (
		n          notification.Notification
		recipients []byte
		content    []byte
		channels   []byte
		recurrence []byte
		delivery   []byte
	)

	row := store.connPool.QueryRow(ctx, getNotification, id)
	err := row.Scan(&n.ID, &recipients, &n.Title, &n.Message, &content, &n.Type, &n.Category,
		&n.Priority, &channels, &n.SendAt, &n.Timezone, &recurrence, &n.Status, &n.SentAt,
		&delivery, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(recipients, &n.Recipients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipients: %w", err)
	}
	if err = json.Unmarshal(channels, &n.Channels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channels: %w", err)
	}
	if err = json.Unmarshal(delivery, &n.Delivery); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery record: %w", err)
	}
	if len(content) > 0 {
		n.Content = new(notification.Content)
		if err = json.Unmarshal(content, n.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content: %w", err)
		}
	}
	if len(recurrence) > 0 {
		n.Recurrence = new(notification.Recurrence)
		if err = json.Unmarshal(recurrence, n.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recurrence: %w", err)
		}
	}

	return &n, nil
}

const updateNotificationStatus = `
UPDATE notifications
SET status = $2,
    sent_at = COALESCE($3, sent_at),
    updated_at = now()
WHERE id = $1
`

type UpdateNotificationStatusParams struct {
	ID     string
	Status notification.Status
	SentAt *time.Time
}

func (store *SQLStore) UpdateNotificationStatus(ctx context.Context, arg UpdateNotificationStatusParams) error {
	tag, err := store.connPool.Exec(ctx, updateNotificationStatus, arg.ID, arg.Status, arg.SentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

const finalizeNotificationDelivery = `
UPDATE notifications
SET status = $2,
    delivery = $3,
    updated_at = now()
WHERE id = $1
`

type FinalizeNotificationDeliveryParams struct {
	ID       string
	Status   notification.Status
	Delivery notification.DeliveryRecord
}

// FinalizeNotificationDelivery writes the aggregated delivery block and the
// final status in one statement, so a notification never ends up with final
// counters but a stale status.
func (store *SQLStore) FinalizeNotificationDelivery(ctx context.Context, arg FinalizeNotificationDeliveryParams) error {
	delivery, err := json.Marshal(arg.Delivery)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery record: %w", err)
	}

	tag, err := store.connPool.Exec(ctx, finalizeNotificationDelivery, arg.ID, arg.Status, delivery)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

const listOverdueScheduledNotifications = `
SELECT id, priority
FROM notifications
WHERE status = 'scheduled' AND send_at <= $1
ORDER BY send_at
`

// OverdueNotification identifies a scheduled notification whose send time
// has already passed.
type OverdueNotification struct {
	ID       string
	Priority notification.Priority
}

func (store *SQLStore) ListOverdueScheduledNotifications(ctx context.Context, before time.Time) ([]OverdueNotification, error) {
	rows, err := store.connPool.Query(ctx, listOverdueScheduledNotifications, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []OverdueNotification
	for rows.Next() {
		var n OverdueNotification
		if err = rows.Scan(&n.ID, &n.Priority); err != nil {
			return nil, err
		}
		overdue = append(overdue, n)
	}
	return overdue, rows.Err()
}
