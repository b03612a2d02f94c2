package notification

import (
	"encoding/json"
	"errors"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type Category string

const (
	CategoryEducational Category = "educational"
	CategorySocial      Category = "social"
	CategorySystem      Category = "system"
	CategoryMarketing   Category = "marketing"
	CategorySecurity    Category = "security"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Type enumerates the business events that produce notifications.
type Type string

const (
	TypeCoursePublished   Type = "course_published"
	TypeLessonCompleted   Type = "lesson_completed"
	TypeQuizGraded        Type = "quiz_graded"
	TypeCertificateIssued Type = "certificate_issued"
	TypeNewFollower       Type = "new_follower"
	TypeCommentReply      Type = "comment_reply"
	TypeSystemMaintenance Type = "system_maintenance"
	TypePromoOffer        Type = "promo_offer"
	TypePasswordChanged   Type = "password_changed"
	TypeLoginAlert        Type = "login_alert"
)

// Recipients is the addressing block of a notification. At least one
// addressing mode must be set before the notification can be dispatched.
type Recipients struct {
	UserIDs   []string `json:"userIDs,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	Broadcast bool     `json:"broadcast,omitempty"`
}

var ErrNoRecipients = errors.New("notification has no addressing mode set")

func (r Recipients) Validate() error {
	if len(r.UserIDs) == 0 && len(r.Roles) == 0 && len(r.Groups) == 0 && !r.Broadcast {
		return ErrNoRecipients
	}
	return nil
}

// Channels holds the per-channel delivery flags of a notification.
type Channels struct {
	InApp   bool `json:"inApp"`
	Email   bool `json:"email"`
	SMS     bool `json:"sms"`
	Push    bool `json:"push"`
	Webhook bool `json:"webhook"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Content is the optional rich body of a notification.
type Content struct {
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ActionURL   string       `json:"actionURL,omitempty"`
}

// Recurrence is stored verbatim; expansion into individual instances is a
// producer-side concern that re-enqueues single notifications.
type Recurrence struct {
	Pattern string     `json:"pattern"`
	EndDate *time.Time `json:"endDate,omitempty"`
}

type Notification struct {
	ID         string         `json:"id"`
	Recipients Recipients     `json:"recipients"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Content    *Content       `json:"content,omitempty"`
	Type       Type           `json:"type"`
	Category   Category       `json:"category"`
	Priority   Priority       `json:"priority"`
	Channels   Channels       `json:"channels"`
	SendAt     *time.Time     `json:"sendAt,omitempty"`
	Timezone   string         `json:"timezone,omitempty"`
	Recurrence *Recurrence    `json:"recurrence,omitempty"`
	Status     Status         `json:"status"`
	SentAt     *time.Time     `json:"sentAt,omitempty"`
	Delivery   DeliveryRecord `json:"delivery"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// ChannelStats are the persisted per-channel delivery counters. For email,
// Failed counts provider-reported hard bounces.
type ChannelStats struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// DeliveryRecord is the aggregate delivery block written once per dispatch.
type DeliveryRecord struct {
	InApp           ChannelStats `json:"inApp"`
	Email           ChannelStats `json:"email"`
	SMS             ChannelStats `json:"sms"`
	Push            ChannelStats `json:"push"`
	Webhook         ChannelStats `json:"webhook"`
	TotalRecipients int          `json:"totalRecipients"`
	Successful      int          `json:"successful"`
	Failed          int          `json:"failed"`
}

// Pending reports how many recipient-channel sends were attempted but have
// neither succeeded nor failed yet.
func (d DeliveryRecord) Pending() int {
	attempted := d.InApp.Attempted + d.Email.Attempted + d.SMS.Attempted + d.Push.Attempted + d.Webhook.Attempted
	pending := attempted - d.Successful - d.Failed
	if pending < 0 {
		return 0
	}
	return pending
}

// MarshalJSON adds the derived pending count to the delivery block so API
// clients do not have to recompute it.
func (d DeliveryRecord) MarshalJSON() ([]byte, error) {
	type record DeliveryRecord
	return json.Marshal(struct {
		record
		Pending int `json:"pending"`
	}{record(d), d.Pending()})
}
