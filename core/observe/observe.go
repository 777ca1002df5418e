package observe

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Origin tags a commit with where the committed value came from.
// Mirroring observers branch on the origin instead of on shared mutable
// state, so an inbound backend value is never echoed back to storage.
type Origin int

const (
	// OriginReplay marks the initial delivery a subscriber receives
	// synchronously at subscribe time.
	OriginReplay Origin = iota
	// OriginUser marks a value committed through the store's own API
	// (set/update/remove/clear). These commits are mirrored to storage.
	OriginUser
	// OriginSync marks a value read back from storage (forced sync or an
	// external change notification). These commits are never mirrored.
	OriginSync
)

// Container is a minimal observable value holder: get the current value,
// commit a new one, subscribe with immediate replay of the current value.
// Delivery is synchronous on the committing goroutine, in subscription
// order, with no buffering.
type Container[T any] struct {
	mu     sync.Mutex
	value  T
	order  []string
	subs   map[string]func(value T, origin Origin)
	logger *zap.Logger
}

// NewContainer creates a container seeded with initial. A nil logger
// silences diagnostics.
func NewContainer[T any](initial T, logger *zap.Logger) *Container[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container[T]{
		value:  initial,
		subs:   map[string]func(T, Origin){},
		logger: logger,
	}
}

// Get returns the current value. No side effects.
func (c *Container[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Commit replaces the current value and fans it out to every subscriber.
// Callers are responsible for equality gating; Commit itself always
// notifies. The value is stored before any subscriber runs, so a reentrant
// Get observes the committed value.
func (c *Container[T]) Commit(value T, origin Origin) {
	c.mu.Lock()
	c.value = value
	fns := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		c.deliver(fn, value, origin)
	}
}

// Subscribe registers fn and immediately invokes it with the current value
// and OriginReplay. The returned cancel func is idempotent.
func (c *Container[T]) Subscribe(fn func(value T, origin Origin)) (cancel func()) {
	id := uuid.NewString()

	c.mu.Lock()
	current := c.value
	c.order = append(c.order, id)
	c.subs[id] = fn
	c.mu.Unlock()

	c.deliver(fn, current, OriginReplay)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; !ok {
			return
		}
		delete(c.subs, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// snapshotLocked returns subscribers in registration order. Caller holds mu.
func (c *Container[T]) snapshotLocked() []func(T, Origin) {
	fns := make([]func(T, Origin), 0, len(c.order))
	for _, id := range c.order {
		if fn, ok := c.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// deliver invokes one subscriber, isolating panics so a failing observer
// cannot prevent the rest from receiving the value.
func (c *Container[T]) deliver(fn func(T, Origin), value T, origin Origin) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("observer panicked", zap.Any("panic", r))
		}
	}()
	fn(value, origin)
}
