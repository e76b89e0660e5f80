package reactive

import "sync"

// Subscription represents a live registration against an Event, Signal,
// Variable or Countdown. Go has no destructor, so unlike the Rust original a
// Subscription that is simply dropped on the floor stays live forever; call
// Unsubscribe explicitly to deregister it.
type Subscription struct {
	mu     sync.Mutex
	id     uint64
	live   bool
	cancel func(uint64)
}

func newSubscription(id uint64, cancel func(uint64)) *Subscription {
	return &Subscription{id: id, live: true, cancel: cancel}
}

// noopSubscription is returned when a subscriber fires immediately and has
// nothing left to cancel (e.g. subscribing to an already-set Signal).
func noopSubscription() *Subscription {
	return &Subscription{live: false}
}

// Unsubscribe deregisters the callback. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.live = false
		s.cancel(s.id)
	}
}

// Forever detaches the Subscription from any further lifecycle management by
// the caller without cancelling it; the callback remains registered until its
// owner is discarded. Provided for parity with the original's "retain
// forever" handle, which in Go is simply the default behaviour of never
// calling Unsubscribe.
func (s *Subscription) Forever() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = false
}
