package application

import (
	"context"
	"sync"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

var _ ports.Subscription = (*Subscription)(nil)

// Subscription is the handle returned by Synchronizer.Subscribe.
type Subscription struct {
	mu        sync.Mutex
	state     ports.SubscriptionState
	closed    bool
	failed    bool
	released  bool
	feed      ports.Unsubscriber
	cancel    context.CancelFunc
	onRelease func()
}

func newSubscription() *Subscription {
	return &Subscription{state: ports.StateUnsubscribed}
}

// State reports the current lifecycle state.
func (s *Subscription) State() ports.SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Unsubscribe detaches the store feed. It is safe to call more than once and
// from any goroutine; once it returns no further callbacks are delivered.
// A failed subscription keeps reporting StateError.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if !s.failed {
		s.state = ports.StateUnsubscribed
	}
	s.mu.Unlock()
	s.release()
}

func (s *Subscription) begin(cancel context.CancelFunc, onRelease func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ports.StateSubscribing
	s.cancel = cancel
	s.onRelease = onRelease
}

// attach stores the store feed, detaching it right away if the subscription
// already ended while the store was subscribing.
func (s *Subscription) attach(feed ports.Unsubscriber) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		if feed != nil {
			feed.Unsubscribe()
		}
		return
	}
	s.feed = feed
	s.mu.Unlock()
}

func (s *Subscription) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && !s.failed
}

// transition moves an active subscription to state; it reports false when the
// subscription is no longer active.
func (s *Subscription) transition(state ports.SubscriptionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.failed {
		return false
	}
	s.state = state
	return true
}

// fail moves the subscription into the terminal error state. Only the first call wins.
func (s *Subscription) fail() bool {
	s.mu.Lock()
	if s.closed || s.failed {
		s.mu.Unlock()
		return false
	}
	s.failed = true
	s.state = ports.StateError
	s.mu.Unlock()
	s.release()
	return true
}

func (s *Subscription) release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	feed, cancel, onRelease := s.feed, s.cancel, s.onRelease
	s.feed = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if feed != nil {
		feed.Unsubscribe()
	}
	if onRelease != nil {
		onRelease()
	}
}
