package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

const defaultChannelTimeout = 2 * time.Minute

// NotificationStore is the slice of the store the engine mutates. The
// engine is the only writer of a notification's dispatch-time state.
type NotificationStore interface {
	GetNotification(ctx context.Context, id string) (*notification.Notification, error)
	UpdateNotificationStatus(ctx context.Context, arg db.UpdateNotificationStatusParams) error
	FinalizeNotificationDelivery(ctx context.Context, arg db.FinalizeNotificationDeliveryParams) error
}

// Engine runs the dispatch pipeline for one queued notification job:
// resolver -> preference filter -> channel dispatchers -> aggregator.
type Engine struct {
	store          NotificationStore
	resolver       *Resolver
	filter         *PreferenceFilter
	dispatchers    []ChannelDispatcher
	channelTimeout time.Duration
}

func NewEngine(store NotificationStore, resolver *Resolver, filter *PreferenceFilter, dispatchers []ChannelDispatcher, channelTimeout time.Duration) *Engine {
	if channelTimeout <= 0 {
		channelTimeout = defaultChannelTimeout
	}
	return &Engine{
		store:          store,
		resolver:       resolver,
		filter:         filter,
		dispatchers:    dispatchers,
		channelTimeout: channelTimeout,
	}
}

// Run processes one notification job end to end. Per-recipient and
// per-channel errors are converted into delivery counts; only structural
// errors (missing record, failed state writes) return an error, which marks
// the notification failed and hands the retry decision back to the queue.
// Jobs are at-least-once: a redelivered job that finds the notification
// already sent or cancelled is a no-op, while one that finds it failed runs
// the pipeline again so a transient error does not strand the notification.
func (e *Engine) Run(ctx context.Context, notificationID string) error {
	n, err := e.store.GetNotification(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to load notification %s: %w", notificationID, err)
	}

	switch n.Status {
	case notification.StatusCancelled:
		log.Info().Str("notificationID", n.ID).Msg("notification cancelled before dispatch, skipping")
		return nil
	case notification.StatusSent:
		log.Info().Str("notificationID", n.ID).Msg("notification already sent, skipping redelivered job")
		return nil
	case notification.StatusFailed:
		log.Info().Str("notificationID", n.ID).Msg("retrying failed notification")
	}

	if err = n.Transition(notification.StatusSending); err != nil {
		return err
	}
	now := time.Now()
	n.SentAt = &now
	err = e.store.UpdateNotificationStatus(ctx, db.UpdateNotificationStatusParams{
		ID:     n.ID,
		Status: notification.StatusSending,
		SentAt: n.SentAt,
	})
	if err != nil {
		return e.fail(ctx, n.ID, fmt.Errorf("failed to mark notification sending: %w", err))
	}

	candidates := e.resolver.Resolve(ctx, n.Recipients)
	filtered := e.filter.Filter(ctx, n, candidates)
	recipients := filtered.Recipients()

	log.Info().Str("notificationID", n.ID).
		Int("candidates", len(candidates)).
		Int("recipients", len(recipients)).
		Msg("dispatching notification")

	results := e.dispatchChannels(ctx, n, filtered)

	record := Aggregate(len(recipients), results)
	err = e.store.FinalizeNotificationDelivery(ctx, db.FinalizeNotificationDeliveryParams{
		ID:       n.ID,
		Status:   notification.StatusSent,
		Delivery: record,
	})
	if err != nil {
		return e.fail(ctx, n.ID, fmt.Errorf("failed to finalize delivery: %w", err))
	}

	log.Info().Str("notificationID", n.ID).
		Int("totalRecipients", record.TotalRecipients).
		Int("successful", record.Successful).
		Int("failed", record.Failed).
		Int("pending", record.Pending()).
		Msg("notification dispatched")

	return nil
}

// dispatchChannels runs every enabled channel concurrently, each under its
// own timeout so one slow provider cannot stall the whole job. Each channel
// gets the filtered recipients minus the users who disabled that channel in
// their preferences. Aggregation strictly waits for all channels to finish:
// a join barrier, not a race.
func (e *Engine) dispatchChannels(ctx context.Context, n *notification.Notification, filtered *FilterResult) []ChannelResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []ChannelResult
	)

	for _, dispatcher := range e.dispatchers {
		if !channelEnabled(n.Channels, dispatcher.Channel()) {
			continue
		}

		wg.Add(1)
		go func(d ChannelDispatcher) {
			defer wg.Done()

			channelCtx, cancel := context.WithTimeout(ctx, e.channelTimeout)
			defer cancel()

			result := d.Dispatch(channelCtx, n, filtered.ForChannel(d.Channel()))

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(dispatcher)
	}

	wg.Wait()
	return results
}

// fail marks the notification failed before propagating the pipeline error
// to the queue, so it never remains stuck in sending. The status write is
// best effort: the original error is what the queue needs to see.
func (e *Engine) fail(ctx context.Context, notificationID string, pipelineErr error) error {
	err := e.store.UpdateNotificationStatus(ctx, db.UpdateNotificationStatusParams{
		ID:     notificationID,
		Status: notification.StatusFailed,
	})
	if err != nil {
		log.Error().Err(err).Str("notificationID", notificationID).Msg("failed to mark notification failed")
	}
	return pipelineErr
}

func channelEnabled(channels notification.Channels, channel Channel) bool {
	switch channel {
	case ChannelInApp:
		return channels.InApp
	case ChannelEmail:
		return channels.Email
	case ChannelSMS:
		return channels.SMS
	case ChannelPush:
		return channels.Push
	case ChannelWebhook:
		return channels.Webhook
	default:
		return false
	}
}
