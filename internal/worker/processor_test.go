package worker

import (
	"testing"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/stretchr/testify/require"
)

func TestQueueForPriority(t *testing.T) {
	require.Equal(t, QueueCritical, QueueForPriority(notification.PriorityUrgent))
	require.Equal(t, QueueCritical, QueueForPriority(notification.PriorityHigh))
	require.Equal(t, QueueDefault, QueueForPriority(notification.PriorityNormal))
	require.Equal(t, QueueDefault, QueueForPriority(notification.PriorityLow))
	require.Equal(t, QueueDefault, QueueForPriority(notification.Priority("")))
}

func TestDispatchTaskID(t *testing.T) {
	require.Equal(t, "notification:dispatch:ntf_abc", DispatchTaskID("ntf_abc"))
}
