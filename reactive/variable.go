package reactive

import "sync"

// outcomeKind tags what Compute decided to do with the Variable's value.
type outcomeKind uint8

const (
	outcomeRetain outcomeKind = iota
	outcomeNotify
	outcomeFailed
)

// Outcome is the result a Compute callback returns: keep the old value,
// replace it and notify subscribers, or fail (keeping the old value but
// surfacing an error).
type Outcome[T any] struct {
	kind outcomeKind
	old  *T
	new  *T
	err  error
}

// Retain keeps the Variable's current value unchanged; no notification fires.
func Retain[T any](old *T) Outcome[T] { return Outcome[T]{kind: outcomeRetain, old: old} }

// Notify replaces the Variable's value and notifies subscribers of the
// (old, new) pair.
func Notify[T any](old, new *T) Outcome[T] { return Outcome[T]{kind: outcomeNotify, old: old, new: new} }

// Fail keeps the Variable's current value unchanged and returns err from
// Compute, without notifying subscribers.
func Fail[T any](old *T, err error) Outcome[T] { return Outcome[T]{kind: outcomeFailed, old: old, err: err} }

// Change is the (old, new) pair delivered to a Variable subscriber. Old is
// nil the first time a subscriber is notified after subscribing to an unset
// Variable that later becomes set, and New is nil when a value is unset.
type Change[T any] struct {
	Old *T
	New *T
}

// Variable holds an optional current value of T and notifies subscribers of
// (old, new) transitions decided by a Compute callback.
type Variable[T any] struct {
	mu    sync.Mutex
	value *T
	event *Event[Change[T]]
}

// NewVariable creates an unset Variable.
func NewVariable[T any]() *Variable[T] {
	return &Variable[T]{event: NewEvent[Change[T]]()}
}

// Get returns the current value and whether it is set.
func (v *Variable[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.value == nil {
		var zero T
		return zero, false
	}
	return *v.value, true
}

// Compute runs f with the current value and applies its Outcome atomically
// with respect to other Compute/Set/Unset calls. Notification, if any, fires
// after the lock is released. Compute returns the error carried by a Fail
// outcome, or nil.
func (v *Variable[T]) Compute(f func(old *T) Outcome[T]) error {
	v.mu.Lock()
	outcome := f(v.value)

	var change *Change[T]
	var err error
	switch outcome.kind {
	case outcomeRetain:
		v.value = outcome.old
	case outcomeNotify:
		v.value = outcome.new
		change = &Change[T]{Old: outcome.old, New: outcome.new}
	case outcomeFailed:
		v.value = outcome.old
		err = outcome.err
	}
	v.mu.Unlock()

	if change != nil {
		v.event.Trigger(change)
	}
	return err
}

// Set assigns value unconditionally, always notifying subscribers.
func (v *Variable[T]) Set(value T) {
	_ = v.Compute(func(old *T) Outcome[T] { return Notify(old, &value) })
}

// Unset clears the Variable if it is currently set.
func (v *Variable[T]) Unset() {
	_ = v.Compute(func(old *T) Outcome[T] {
		if old == nil {
			return Retain[T](old)
		}
		return Notify[T](old, nil)
	})
}

// SetIfNoneOr assigns value unless the Variable already holds a value v0 for
// which cond(v0, value) is false, in which case the current value is
// retained. A Variable with no current value is always assigned.
func (v *Variable[T]) SetIfNoneOr(value T, cond func(old, new T) bool) {
	_ = v.Compute(func(old *T) Outcome[T] {
		if old != nil && !cond(*old, value) {
			return Retain(old)
		}
		return Notify(old, &value)
	})
}

// TrackMax assigns value only if less(old, value) holds (or the Variable is
// currently unset), i.e. it only ever moves to strictly greater values under
// less.
func (v *Variable[T]) TrackMax(value T, less func(a, b T) bool) {
	v.SetIfNoneOr(value, less)
}

// Subscribe registers cb for future (old, new) transitions. If the Variable
// already holds a value, cb fires immediately with (nil, current) before
// Subscribe returns, exactly as every later transition would fire it.
func (v *Variable[T]) Subscribe(cb func(*Change[T])) *Subscription {
	v.mu.Lock()
	current := v.value
	v.mu.Unlock()

	if current != nil {
		cur := *current
		cb(&Change[T]{Old: nil, New: &cur})
	}
	return v.event.Subscribe(cb)
}
