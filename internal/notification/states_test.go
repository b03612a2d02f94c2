package notification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusDraft, StatusScheduled},
		{StatusDraft, StatusSending},
		{StatusDraft, StatusCancelled},
		{StatusScheduled, StatusSending},
		{StatusScheduled, StatusCancelled},
		{StatusSending, StatusSent},
		{StatusSending, StatusFailed},
		{StatusFailed, StatusSending},
	}
	for _, tc := range allowed {
		require.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	terminal := []Status{StatusSent, StatusCancelled}
	all := []Status{StatusDraft, StatusScheduled, StatusSending, StatusSent, StatusFailed, StatusCancelled}

	for _, from := range terminal {
		require.True(t, from.IsTerminal())
		for _, to := range all {
			require.False(t, from.CanTransitionTo(to), "%s is terminal, %s -> %s must be rejected", from, from, to)
		}
	}

	// No edges back into draft or scheduled, and sending cannot be cancelled.
	require.False(t, StatusScheduled.CanTransitionTo(StatusDraft))
	require.False(t, StatusSending.CanTransitionTo(StatusCancelled))
	require.False(t, StatusSending.CanTransitionTo(StatusScheduled))

	// Failed is retryable, but only back into sending.
	require.False(t, StatusFailed.IsTerminal())
	for _, to := range all {
		require.Equal(t, to == StatusSending, StatusFailed.CanTransitionTo(to))
	}
}

func TestNotificationTransition(t *testing.T) {
	n := &Notification{ID: "ntf_1", Status: StatusScheduled}

	err := n.Transition(StatusSending)
	require.NoError(t, err)
	require.Equal(t, StatusSending, n.Status)

	err = n.Transition(StatusCancelled)
	require.Error(t, err)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	require.Equal(t, StatusSending, invalidErr.From)
	require.Equal(t, StatusCancelled, invalidErr.To)
	require.Equal(t, StatusSending, n.Status, "failed transition must not mutate status")
}
