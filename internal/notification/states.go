package notification

import "fmt"

// validTransitions encodes the notification lifecycle. Sent and cancelled
// are terminal, so sent can never fall back to sending. Failed is not: a
// redelivered queue job may pick a failed notification back up, which is the
// only way out of failed.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusScheduled, StatusSending, StatusCancelled},
	StatusScheduled: {StatusSending, StatusCancelled},
	StatusSending:   {StatusSent, StatusFailed},
	StatusFailed:    {StatusSending},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid notification status transition from %q to %q", e.From, e.To)
}

// Transition validates and applies a status change on the notification.
func (n *Notification) Transition(next Status) error {
	if !n.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: n.Status, To: next}
	}
	n.Status = next
	return nil
}
