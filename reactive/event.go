package reactive

import "sync"

// Event is a multi-fire, multi-subscriber notification primitive. Trigger
// invokes every live subscriber in registration order; callbacks registered
// or cancelled from within a callback never affect the snapshot currently
// firing (§5: no lock is held across a user callback).
type Event[T any] struct {
	mu        sync.Mutex
	callbacks map[uint64]func(*T)
	order     []uint64
	nextID    uint64
}

// NewEvent creates an empty Event.
func NewEvent[T any]() *Event[T] {
	return &Event[T]{callbacks: make(map[uint64]func(*T))}
}

// Subscribe registers cb and returns a Subscription that cancels it.
func (e *Event[T]) Subscribe(cb func(*T)) *Subscription {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.callbacks[id] = cb
	e.order = append(e.order, id)
	e.mu.Unlock()

	return newSubscription(id, e.unsubscribe)
}

// Trigger fires every currently-registered subscriber with value. The
// subscriber set is snapshotted under the lock and invoked without it held.
func (e *Event[T]) Trigger(value *T) {
	e.mu.Lock()
	order := make([]uint64, len(e.order))
	copy(order, e.order)
	callbacks := make(map[uint64]func(*T), len(e.callbacks))
	for id, cb := range e.callbacks {
		callbacks[id] = cb
	}
	e.mu.Unlock()

	for _, id := range order {
		if cb, ok := callbacks[id]; ok {
			cb(value)
		}
	}
}

func (e *Event[T]) unsubscribe(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.callbacks, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}
