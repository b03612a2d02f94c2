package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/stretchr/testify/require"
)

func newTestEngine(store *fakeStore, prefs *fakePreferences, dir *fakeDirectory, dispatchers ...ChannelDispatcher) *Engine {
	filter := NewPreferenceFilter(prefs)
	filter.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return NewEngine(store, NewResolver(dir), filter, dispatchers, time.Minute)
}

func TestEngineRun(t *testing.T) {
	// u1 has no preference record, u2 has disabled the category. Only u1
	// should reach the dispatchers, on both enabled channels.
	n := &notification.Notification{
		ID:       "ntf_1",
		Title:    "Quiz graded",
		Message:  "Your quiz was graded",
		Category: notification.CategoryEducational,
		Type:     notification.TypeQuizGraded,
		Priority: notification.PriorityNormal,
		Status:   notification.StatusScheduled,
		Recipients: notification.Recipients{
			UserIDs: []string{"u1", "u2"},
		},
		Channels: notification.Channels{InApp: true, Email: true},
	}
	store := newFakeStore(n)
	prefs := &fakePreferences{records: map[string]*notification.Preference{
		"u2": {UserID: "u2", Categories: map[notification.Category]bool{notification.CategoryEducational: false}},
	}}

	inApp := &fakeChannelDispatcher{
		channel: ChannelInApp,
		result:  ChannelResult{Channel: ChannelInApp, Attempted: 1, Delivered: 1},
	}
	email := &fakeChannelDispatcher{
		channel: ChannelEmail,
		result:  ChannelResult{Channel: ChannelEmail, Attempted: 1, Delivered: 1},
	}
	smsDisp := &fakeChannelDispatcher{channel: ChannelSMS}

	engine := newTestEngine(store, prefs, &fakeDirectory{}, inApp, email, smsDisp)

	err := engine.Run(context.Background(), "ntf_1")
	require.NoError(t, err)

	require.Equal(t, []string{"u1"}, inApp.recipients)
	require.Equal(t, []string{"u1"}, email.recipients)
	require.Zero(t, smsDisp.calls, "disabled channel must not run")

	require.Len(t, store.statusWrites, 1)
	require.Equal(t, notification.StatusSending, store.statusWrites[0].Status)
	require.NotNil(t, store.statusWrites[0].SentAt)

	require.Len(t, store.finalized, 1)
	finalized := store.finalized[0]
	require.Equal(t, notification.StatusSent, finalized.Status)
	require.Equal(t, 1, finalized.Delivery.TotalRecipients)
	require.Equal(t, 1, finalized.Delivery.InApp.Attempted)
	require.Equal(t, 1, finalized.Delivery.Email.Delivered)
	require.Equal(t, 2, finalized.Delivery.Successful)
	require.Zero(t, finalized.Delivery.Failed)
}

func TestEngineChannelIsolation(t *testing.T) {
	// An all-failed SMS channel must not change the outcome of the others.
	n := &notification.Notification{
		ID:         "ntf_2",
		Status:     notification.StatusDraft,
		Priority:   notification.PriorityNormal,
		Recipients: notification.Recipients{UserIDs: []string{"u1", "u2"}},
		Channels:   notification.Channels{InApp: true, Email: true, SMS: true},
	}
	store := newFakeStore(n)

	inApp := &fakeChannelDispatcher{
		channel: ChannelInApp,
		result:  ChannelResult{Channel: ChannelInApp, Attempted: 2, Delivered: 2},
	}
	email := &fakeChannelDispatcher{
		channel: ChannelEmail,
		result:  ChannelResult{Channel: ChannelEmail, Attempted: 2, Delivered: 2},
	}
	smsDisp := &fakeChannelDispatcher{
		channel: ChannelSMS,
		result:  ChannelResult{Channel: ChannelSMS, Attempted: 2, Failed: 2},
	}

	engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{}, inApp, email, smsDisp)

	err := engine.Run(context.Background(), "ntf_2")
	require.NoError(t, err)

	require.Len(t, store.finalized, 1)
	delivery := store.finalized[0].Delivery
	require.Equal(t, 2, delivery.InApp.Delivered)
	require.Equal(t, 2, delivery.Email.Delivered)
	require.Equal(t, 2, delivery.SMS.Failed)
	require.Equal(t, notification.StatusSent, store.finalized[0].Status)
	// in-app counts attempted minus failed (2), email counts delivered (2),
	// SMS delivered nothing.
	require.Equal(t, 4, delivery.Successful)
	require.Equal(t, 2, delivery.Failed)
}

func TestEngineChannelOptOut(t *testing.T) {
	// u1 disabled the email channel, so only in-app may see them even though
	// the notification targets both channels.
	n := &notification.Notification{
		ID:         "ntf_6",
		Status:     notification.StatusScheduled,
		Priority:   notification.PriorityNormal,
		Recipients: notification.Recipients{UserIDs: []string{"u1"}},
		Channels:   notification.Channels{InApp: true, Email: true},
	}
	store := newFakeStore(n)
	prefs := &fakePreferences{records: map[string]*notification.Preference{
		"u1": {
			UserID:   "u1",
			Channels: notification.ChannelPreferences{InApp: true, SMS: true, Push: true, Webhook: true},
		},
	}}

	inApp := &fakeChannelDispatcher{
		channel: ChannelInApp,
		result:  ChannelResult{Channel: ChannelInApp, Attempted: 1, Delivered: 1},
	}
	email := &fakeChannelDispatcher{channel: ChannelEmail}

	engine := newTestEngine(store, prefs, &fakeDirectory{}, inApp, email)

	err := engine.Run(context.Background(), "ntf_6")
	require.NoError(t, err)

	require.Equal(t, []string{"u1"}, inApp.recipients)
	require.Empty(t, email.recipients, "disabled channel must not see the recipient")

	require.Len(t, store.finalized, 1)
	require.Equal(t, 1, store.finalized[0].Delivery.TotalRecipients)
	require.Zero(t, store.finalized[0].Delivery.Email.Attempted)
}

func TestEngineSkipsFinishedNotifications(t *testing.T) {
	for _, status := range []notification.Status{
		notification.StatusCancelled,
		notification.StatusSent,
	} {
		t.Run(string(status), func(t *testing.T) {
			n := &notification.Notification{ID: "ntf_3", Status: status}
			store := newFakeStore(n)
			disp := &fakeChannelDispatcher{channel: ChannelInApp}
			engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{}, disp)

			err := engine.Run(context.Background(), "ntf_3")
			require.NoError(t, err)
			require.Zero(t, disp.calls)
			require.Empty(t, store.statusWrites)
			require.Empty(t, store.finalized)
		})
	}
}

func TestEngineMissingNotification(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{})

	err := engine.Run(context.Background(), "ntf_missing")
	require.Error(t, err)
}

func TestEngineMarksFailedOnFinalizeError(t *testing.T) {
	n := &notification.Notification{
		ID:         "ntf_4",
		Status:     notification.StatusDraft,
		Priority:   notification.PriorityNormal,
		Recipients: notification.Recipients{UserIDs: []string{"u1"}},
		Channels:   notification.Channels{InApp: true},
	}
	store := newFakeStore(n)
	store.finalizeErr = errors.New("write failed")

	disp := &fakeChannelDispatcher{
		channel: ChannelInApp,
		result:  ChannelResult{Channel: ChannelInApp, Attempted: 1, Delivered: 1},
	}
	engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{}, disp)

	err := engine.Run(context.Background(), "ntf_4")
	require.Error(t, err)

	// sending first, then the best-effort failed mark.
	require.Len(t, store.statusWrites, 2)
	require.Equal(t, notification.StatusSending, store.statusWrites[0].Status)
	require.Equal(t, notification.StatusFailed, store.statusWrites[1].Status)
}

func TestEngineRetriesFailedNotification(t *testing.T) {
	// A transient finalize error marks the notification failed; the
	// redelivered job must run the pipeline again instead of leaving it
	// stranded.
	n := &notification.Notification{
		ID:         "ntf_7",
		Status:     notification.StatusScheduled,
		Priority:   notification.PriorityNormal,
		Recipients: notification.Recipients{UserIDs: []string{"u1"}},
		Channels:   notification.Channels{InApp: true},
	}
	store := newFakeStore(n)
	store.finalizeErr = errors.New("write failed")

	disp := &fakeChannelDispatcher{
		channel: ChannelInApp,
		result:  ChannelResult{Channel: ChannelInApp, Attempted: 1, Delivered: 1},
	}
	engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{}, disp)

	err := engine.Run(context.Background(), "ntf_7")
	require.Error(t, err)
	require.Equal(t, notification.StatusFailed, store.notifications["ntf_7"].Status)

	store.finalizeErr = nil

	err = engine.Run(context.Background(), "ntf_7")
	require.NoError(t, err)

	require.Equal(t, 2, disp.calls, "retry must dispatch again")
	require.Len(t, store.finalized, 1)
	require.Equal(t, notification.StatusSent, store.finalized[0].Status)
	require.Equal(t, notification.StatusSent, store.notifications["ntf_7"].Status)
}

func TestEngineZeroRecipients(t *testing.T) {
	n := &notification.Notification{
		ID:         "ntf_5",
		Status:     notification.StatusDraft,
		Priority:   notification.PriorityNormal,
		Recipients: notification.Recipients{Roles: []string{"nobody-has-this-role"}},
		Channels:   notification.Channels{Email: true},
	}
	store := newFakeStore(n)
	disp := &fakeChannelDispatcher{channel: ChannelEmail}
	engine := newTestEngine(store, &fakePreferences{}, &fakeDirectory{}, disp)

	err := engine.Run(context.Background(), "ntf_5")
	require.NoError(t, err)

	require.Len(t, store.finalized, 1)
	require.Equal(t, notification.StatusSent, store.finalized[0].Status)
	require.Zero(t, store.finalized[0].Delivery.TotalRecipients)
}
