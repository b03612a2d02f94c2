package dispatch

import (
	"context"
	"sync"

	"github.com/katatrina/eduhub-BE/internal/notification"
)

const defaultRecipientConcurrency = 8

// ChannelDispatcher turns a notification plus a filtered recipient list into
// channel-specific delivery attempts. Dispatchers are mutually independent:
// one channel's failure never prevents the others from running, and a single
// recipient's send error is attributed to that recipient without aborting
// the rest of the channel.
type ChannelDispatcher interface {
	Channel() Channel
	Dispatch(ctx context.Context, n *notification.Notification, recipients []string) ChannelResult
}

// forEachRecipient fans recipient work out across a bounded number of
// goroutines. fn returns the outcomes for one recipient (push produces one
// per device). The bound keeps a large broadcast from overwhelming external
// providers.
func forEachRecipient(ctx context.Context, recipients []string, limit int, fn func(ctx context.Context, recipient string) []DeliveryOutcome) []DeliveryOutcome {
	if limit <= 0 {
		limit = defaultRecipientConcurrency
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes []DeliveryOutcome
	)
	sem := make(chan struct{}, limit)

	for _, recipient := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(recipient string) {
			defer wg.Done()
			defer func() { <-sem }()

			recipientOutcomes := fn(ctx, recipient)

			mu.Lock()
			outcomes = append(outcomes, recipientOutcomes...)
			mu.Unlock()
		}(recipient)
	}

	wg.Wait()
	return outcomes
}
