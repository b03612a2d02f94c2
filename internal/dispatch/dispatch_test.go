package dispatch

import (
	"context"
	"sync"

	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/event"
	"github.com/katatrina/eduhub-BE/internal/mailer"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/push"
)

// Shared in-memory fakes for the pipeline tests. Every fake that records
// calls locks, since dispatchers fan work out across goroutines.

type fakeDirectory struct {
	roles     map[string][]string
	groups    map[string][]string
	active    []string
	rolesErr  error
	groupsErr error
	activeErr error
}

func (d *fakeDirectory) UsersByRole(_ context.Context, role string) ([]string, error) {
	if d.rolesErr != nil {
		return nil, d.rolesErr
	}
	return d.roles[role], nil
}

func (d *fakeDirectory) UsersByGroup(_ context.Context, group string) ([]string, error) {
	if d.groupsErr != nil {
		return nil, d.groupsErr
	}
	return d.groups[group], nil
}

func (d *fakeDirectory) AllActiveUsers(_ context.Context) ([]string, error) {
	if d.activeErr != nil {
		return nil, d.activeErr
	}
	return d.active, nil
}

type fakePreferences struct {
	records map[string]*notification.Preference
	err     error
}

func (p *fakePreferences) GetPreference(_ context.Context, userID string) (*notification.Preference, error) {
	if p.err != nil {
		return nil, p.err
	}
	pref, ok := p.records[userID]
	if !ok {
		return nil, db.ErrRecordNotFound
	}
	return pref, nil
}

type fakeStore struct {
	mu            sync.Mutex
	notifications map[string]*notification.Notification
	getErr        error
	updateErr     error
	finalizeErr   error

	statusWrites []db.UpdateNotificationStatusParams
	finalized    []db.FinalizeNotificationDeliveryParams
}

func newFakeStore(ns ...*notification.Notification) *fakeStore {
	store := &fakeStore{notifications: make(map[string]*notification.Notification)}
	for _, n := range ns {
		store.notifications[n.ID] = n
	}
	return store
}

func (s *fakeStore) GetNotification(_ context.Context, id string) (*notification.Notification, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	n, ok := s.notifications[id]
	if !ok {
		return nil, db.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *fakeStore) UpdateNotificationStatus(_ context.Context, arg db.UpdateNotificationStatusParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.statusWrites = append(s.statusWrites, arg)
	if n, ok := s.notifications[arg.ID]; ok {
		n.Status = arg.Status
	}
	return nil
}

func (s *fakeStore) FinalizeNotificationDelivery(_ context.Context, arg db.FinalizeNotificationDeliveryParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizeErr != nil {
		return s.finalizeErr
	}
	s.finalized = append(s.finalized, arg)
	if n, ok := s.notifications[arg.ID]; ok {
		n.Status = arg.Status
		n.Delivery = arg.Delivery
	}
	return nil
}

type fakeContacts struct {
	contacts map[string]db.UserContact
	err      error
}

func (c *fakeContacts) GetUserContact(_ context.Context, userID string) (db.UserContact, error) {
	if c.err != nil {
		return db.UserContact{}, c.err
	}
	contact, ok := c.contacts[userID]
	if !ok {
		return db.UserContact{}, db.ErrRecordNotFound
	}
	return contact, nil
}

type fakeDevices struct {
	devices map[string][]notification.Device
	err     error
}

func (d *fakeDevices) ListActiveDevices(_ context.Context, userID string) ([]notification.Device, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.devices[userID], nil
}

type fakeInbox struct {
	mu      sync.Mutex
	added   []string
	failFor map[string]error
}

func (i *fakeInbox) Add(_ context.Context, recipientID string, _ *notification.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.failFor[recipientID]; err != nil {
		return err
	}
	i.added = append(i.added, recipientID)
	return nil
}

type fakeSessions struct {
	online map[string]string
	err    error
}

func (s *fakeSessions) Bind(_ context.Context, _, _ string) error { return nil }

func (s *fakeSessions) Unbind(_ context.Context, _ string) error { return nil }

func (s *fakeSessions) Lookup(_ context.Context, userID string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	sessionID, ok := s.online[userID]
	return sessionID, ok, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []event.Event
}

func (e *fakeEvents) Register(_ string, _ chan event.Event) {}

func (e *fakeEvents) Unregister(_ string, _ chan event.Event) {}

func (e *fakeEvents) Run() {}

func (e *fakeEvents) Broadcast(ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *fakeEvents) topics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	topics := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		topics = append(topics, ev.Topic)
	}
	return topics
}

type fakeMailSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (m *fakeMailSender) Send(_ context.Context, message mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[message.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, message.To)
	return nil
}

type fakeSMSSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (s *fakeSMSSender) Send(_ context.Context, phoneNumber, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[phoneNumber]; err != nil {
		return err
	}
	s.sent = append(s.sent, phoneNumber)
	return nil
}

type fakePushSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (p *fakePushSender) Send(_ context.Context, deviceToken string, _ push.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failFor[deviceToken]; err != nil {
		return err
	}
	p.sent = append(p.sent, deviceToken)
	return nil
}

// fakeChannelDispatcher returns a canned result and records the recipients
// it was handed.
type fakeChannelDispatcher struct {
	channel Channel
	result  ChannelResult

	mu         sync.Mutex
	recipients []string
	calls      int
}

func (d *fakeChannelDispatcher) Channel() Channel {
	return d.channel
}

func (d *fakeChannelDispatcher) Dispatch(_ context.Context, _ *notification.Notification, recipients []string) ChannelResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.recipients = append([]string(nil), recipients...)
	return d.result
}
