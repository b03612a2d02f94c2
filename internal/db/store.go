package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katatrina/eduhub-BE/internal/notification"
)

// Store provides all functions to execute db queries and transactions.
type Store interface {
	// Notifications
	CreateNotification(ctx context.Context, arg CreateNotificationParams) (*notification.Notification, error)
	GetNotification(ctx context.Context, id string) (*notification.Notification, error)
	UpdateNotificationStatus(ctx context.Context, arg UpdateNotificationStatusParams) error
	FinalizeNotificationDelivery(ctx context.Context, arg FinalizeNotificationDeliveryParams) error
	ListOverdueScheduledNotifications(ctx context.Context, before time.Time) ([]OverdueNotification, error)

	// Preferences (read-only for the dispatch engine)
	GetPreference(ctx context.Context, userID string) (*notification.Preference, error)
	UpsertPreference(ctx context.Context, pref *notification.Preference) error

	// Push devices
	ListActiveDevices(ctx context.Context, userID string) ([]notification.Device, error)
	RegisterDevice(ctx context.Context, arg RegisterDeviceParams) error
	RevokeDevice(ctx context.Context, userID, token string) error

	// Users (directory + contact lookups)
	GetUserContact(ctx context.Context, userID string) (UserContact, error)
	ListUserIDsByRole(ctx context.Context, role string) ([]string, error)
	ListUserIDsByGroup(ctx context.Context, group string) ([]string, error)
	ListActiveUserIDs(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
}

type SQLStore struct {
	connPool *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(connPool *pgxpool.Pool) Store {
	return &SQLStore{
		connPool: connPool,
	}
}

// Ping checks if the database connection is alive.
func (store *SQLStore) Ping(ctx context.Context) error {
	return store.connPool.Ping(ctx)
}
