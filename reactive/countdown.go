package reactive

import "sync/atomic"

// Countdown fires its embedded Signal once an initial count of Decrease
// calls has drained it to zero. A Countdown created with n == 0 fires
// immediately.
type Countdown struct {
	*Signal[struct{}]
	remaining atomic.Int64
}

// NewCountdown creates a Countdown that requires n calls to Decrease.
func NewCountdown(n int) *Countdown {
	c := &Countdown{Signal: NewSignal[struct{}]()}
	c.remaining.Store(int64(n))
	if n <= 0 {
		c.Signal.Set(struct{}{})
	}
	return c
}

// Decrease decrements the remaining count, firing the Signal when it reaches
// zero. Calling it more times than the initial count is a no-op past zero.
func (c *Countdown) Decrease() {
	if c.remaining.Add(-1) == 0 {
		c.Signal.Set(struct{}{})
	}
}
