package authstate

import (
	"sync"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
)

// Tracker holds the currently signed-in principal for an identity provider
// and fans state changes out to the session watcher. Only the latest state
// matters to consumers, so when the buffer fills the oldest event is dropped.
type Tracker struct {
	mu      sync.Mutex
	current *domain.Identity
	events  chan port.AuthState
	closed  bool
}

func NewTracker() *Tracker {
	return &Tracker{
		events: make(chan port.AuthState, 16),
	}
}

// Set replaces the current identity and publishes an auth-state event.
// A nil identity marks the signed-out state.
func (t *Tracker) Set(identity *domain.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	t.current = identity

	state := port.AuthState{Identity: identity}
	for {
		select {
		case t.events <- state:
			return
		default:
		}
		select {
		case <-t.events:
		default:
		}
	}
}

// Current returns a copy of the signed-in principal, or nil.
func (t *Tracker) Current() *domain.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return nil
	}
	identity := *t.current
	return &identity
}

func (t *Tracker) Changes() <-chan port.AuthState {
	return t.events
}

// Close ends the stream. Further Set calls are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	close(t.events)
}
