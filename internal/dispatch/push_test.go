package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/stretchr/testify/require"
)

func TestPushDispatcher(t *testing.T) {
	n := &notification.Notification{
		ID:       "ntf_1",
		Title:    "New follower",
		Message:  "Someone followed you",
		Priority: notification.PriorityNormal,
	}

	t.Run("routes per device platform", func(t *testing.T) {
		devices := &fakeDevices{devices: map[string][]notification.Device{
			"u1": {
				{Token: "web-1", Platform: notification.PlatformWeb, Active: true},
				{Token: "ios-1", Platform: notification.PlatformIOS, Active: true},
			},
			"u2": {
				{Token: "android-1", Platform: notification.PlatformAndroid, Active: true},
			},
		}}
		mobile := &fakePushSender{}
		web := &fakePushSender{}
		d := NewPushDispatcher(devices, mobile, web, 2)

		result := d.Dispatch(context.Background(), n, []string{"u1", "u2"})

		require.Equal(t, 3, result.Attempted, "one attempt per device")
		require.Equal(t, 3, result.Delivered)
		require.ElementsMatch(t, []string{"ios-1", "android-1"}, mobile.sent)
		require.Equal(t, []string{"web-1"}, web.sent)
	})

	t.Run("zero devices contributes nothing", func(t *testing.T) {
		d := NewPushDispatcher(&fakeDevices{}, &fakePushSender{}, &fakePushSender{}, 2)

		result := d.Dispatch(context.Background(), n, []string{"u1"})

		require.Zero(t, result.Attempted)
		require.Zero(t, result.Delivered)
		require.Zero(t, result.Failed)
	})

	t.Run("one dead token fails only that device", func(t *testing.T) {
		devices := &fakeDevices{devices: map[string][]notification.Device{
			"u1": {
				{Token: "ios-1", Platform: notification.PlatformIOS, Active: true},
				{Token: "ios-2", Platform: notification.PlatformIOS, Active: true},
			},
		}}
		mobile := &fakePushSender{failFor: map[string]error{
			"ios-1": errors.New("registration token not registered"),
		}}
		d := NewPushDispatcher(devices, mobile, &fakePushSender{}, 2)

		result := d.Dispatch(context.Background(), n, []string{"u1"})

		require.Equal(t, 2, result.Attempted)
		require.Equal(t, 1, result.Delivered)
		require.Equal(t, 1, result.Failed)
	})

	t.Run("device load failure fails the recipient", func(t *testing.T) {
		devices := &fakeDevices{err: errors.New("store down")}
		d := NewPushDispatcher(devices, &fakePushSender{}, &fakePushSender{}, 2)

		result := d.Dispatch(context.Background(), n, []string{"u1"})

		require.Equal(t, 1, result.Attempted)
		require.Equal(t, 1, result.Failed)
	})

	t.Run("no web transport fails web devices only", func(t *testing.T) {
		devices := &fakeDevices{devices: map[string][]notification.Device{
			"u1": {
				{Token: "web-1", Platform: notification.PlatformWeb, Active: true},
				{Token: "ios-1", Platform: notification.PlatformIOS, Active: true},
			},
		}}
		d := NewPushDispatcher(devices, &fakePushSender{}, nil, 2)

		result := d.Dispatch(context.Background(), n, []string{"u1"})

		require.Equal(t, 2, result.Attempted)
		require.Equal(t, 1, result.Delivered)
		require.Equal(t, 1, result.Failed)
	})
}
