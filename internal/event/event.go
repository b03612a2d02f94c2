package event

import (
	"fmt"
	"time"
)

// Event represents a real-time event pushed to connected clients.
type Event struct {
	Topic string      // e.g. "user:abc"
	Type  string      // e.g. "notification"
	Data  interface{} // payload, depends on the event type
}

const (
	EventTypeNotification = "notification"
)

// NotificationPayload is the wire shape of an in-app notification event.
type NotificationPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserTopic returns the per-user event topic.
func UserTopic(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// EventSender is the interface for the server pushing events to clients.
type EventSender interface {
	Register(topic string, client chan Event)
	Unregister(topic string, client chan Event)
	Broadcast(event Event)
	Run()
}
