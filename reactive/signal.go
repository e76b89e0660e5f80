package reactive

import "sync"

// Signal is a one-shot notification: it fires at most once, and a subscriber
// that arrives after the value was set is invoked immediately with it instead
// of being queued.
type Signal[T any] struct {
	mu        sync.Mutex
	value     *T
	callbacks map[uint64]func(*T)
	order     []uint64
	nextID    uint64
}

// NewSignal creates an unset Signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{callbacks: make(map[uint64]func(*T))}
}

// Set assigns the Signal's value, firing every current subscriber exactly
// once. Calling Set a second time is a no-op: the first value wins.
func (s *Signal[T]) Set(value T) {
	s.GetOrInsertWith(func() T { return value })
}

// GetOrInsertWith returns the Signal's value, computing and setting it via f
// if unset. f runs at most once.
func (s *Signal[T]) GetOrInsertWith(f func() T) T {
	s.mu.Lock()
	if s.value != nil {
		v := *s.value
		s.mu.Unlock()
		return v
	}

	v := f()
	s.value = &v

	order := s.order
	callbacks := s.callbacks
	s.order = nil
	s.mu.Unlock()

	for _, id := range order {
		if cb, ok := callbacks[id]; ok {
			cb(&v)
		}
	}
	return v
}

// Get returns the current value and whether it has been set.
func (s *Signal[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == nil {
		var zero T
		return zero, false
	}
	return *s.value, true
}

// Subscribe registers cb. If the Signal is already set, cb fires immediately
// and synchronously with the current value and the returned Subscription is
// already inert. Otherwise cb fires exactly once, the first time Set runs.
func (s *Signal[T]) Subscribe(cb func(*T)) *Subscription {
	s.mu.Lock()
	if s.value != nil {
		v := *s.value
		s.mu.Unlock()
		cb(&v)
		return noopSubscription()
	}

	id := s.nextID
	s.nextID++
	s.callbacks[id] = cb
	s.order = append(s.order, id)
	s.mu.Unlock()

	return newSubscription(id, s.unsubscribe)
}

func (s *Signal[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callbacks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
