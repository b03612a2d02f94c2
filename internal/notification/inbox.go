package notification

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
)

// InboxWriter persists in-app notifications to the Firestore collection the
// web client reads its inbox from. Delivery over the live event stream is
// separate; the inbox document is written for every in-app recipient so the
// notification survives reconnects.
type InboxWriter struct {
	client *firestore.Client
}

func NewInboxWriter(ctx context.Context, firebaseApp *firebase.App) (*InboxWriter, error) {
	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	return &InboxWriter{
		client: firestoreClient,
	}, nil
}

// Add creates a new inbox document for the recipient.
func (w *InboxWriter) Add(ctx context.Context, recipientID string, n *Notification) error {
	_, _, err := w.client.Collection("notifications").Add(ctx, map[string]interface{}{
		"notificationID": n.ID,
		"recipientID":    recipientID,
		"title":          n.Title,
		"message":        n.Message,
		"type":           string(n.Type),
		"category":       string(n.Category),
		"priority":       string(n.Priority),
		"isRead":         false,
		"createdAt":      time.Now(),
	})
	return err
}

// InboxItem is one notification as the recipient's inbox sees it.
type InboxItem struct {
	NotificationID string    `firestore:"notificationID" json:"notificationID"`
	Title          string    `firestore:"title" json:"title"`
	Message        string    `firestore:"message" json:"message"`
	Type           string    `firestore:"type" json:"type"`
	Category       string    `firestore:"category" json:"category"`
	Priority       string    `firestore:"priority" json:"priority"`
	IsRead         bool      `firestore:"isRead" json:"isRead"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
}

// List returns the recipient's most recent inbox notifications.
func (w *InboxWriter) List(ctx context.Context, recipientID string, limit int) ([]InboxItem, error) {
	iter := w.client.Collection("notifications").
		Where("recipientID", "==", recipientID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	items := make([]InboxItem, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var item InboxItem
		if err = doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (w *InboxWriter) Close() error {
	return w.client.Close()
}
