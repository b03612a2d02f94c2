package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEachRecipient(t *testing.T) {
	recipients := make([]string, 50)
	for i := range recipients {
		recipients[i] = string(rune('a' + i%26))
	}

	var inFlight, peak int64
	var mu sync.Mutex

	outcomes := forEachRecipient(context.Background(), recipients, 4, func(_ context.Context, recipient string) []DeliveryOutcome {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		defer atomic.AddInt64(&inFlight, -1)

		return []DeliveryOutcome{{Recipient: recipient, Attempted: true}}
	})

	require.Len(t, outcomes, len(recipients))
	require.LessOrEqual(t, peak, int64(4), "concurrency bound exceeded")
}

func TestForEachRecipientEmpty(t *testing.T) {
	called := false
	outcomes := forEachRecipient(context.Background(), nil, 4, func(_ context.Context, _ string) []DeliveryOutcome {
		called = true
		return nil
	})
	require.Empty(t, outcomes)
	require.False(t, called)
}
