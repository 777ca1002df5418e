package storage

import (
	"errors"

	"go.uber.org/zap"
)

// ErrEmptyChain is returned when a chain is constructed with no adapters.
var ErrEmptyChain = errors.New("storage: chain requires at least one adapter")

// Chain combines an ordered, non-empty list of adapters into one logical
// backend for single-key use:
//
//   - reads fall back: the first adapter returning a value wins, and an
//     adapter that panics is skipped, never breaking a healthy fallback;
//   - writes and removals broadcast to every adapter, each isolated from
//     the others' failures (symmetric with the read path);
//   - change events come from element 0 only. Elements 1..n are
//     write-only fallbacks, never sources of events.
type Chain struct {
	adapters []Adapter
	logger   *zap.Logger
}

// NewChain builds a chain over adapters in fallback order. Constructing an
// empty chain is a misuse error, reported immediately rather than at first
// use. A single adapter normalizes into a one-element chain.
func NewChain(logger *zap.Logger, adapters ...Adapter) (*Chain, error) {
	if len(adapters) == 0 {
		return nil, ErrEmptyChain
	}
	for _, a := range adapters {
		if a == nil {
			return nil, errors.New("storage: chain adapter must not be nil")
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{adapters: append([]Adapter{}, adapters...), logger: logger}, nil
}

// Len returns the number of adapters in the chain.
func (c *Chain) Len() int {
	return len(c.adapters)
}

// Get scans the chain in order and returns the first value found. Adapters
// that panic are skipped and logged; if every adapter misses or fails, ok
// is false.
func (c *Chain) Get(key string) (value string, ok bool) {
	for i, adapter := range c.adapters {
		v, hit, failed := c.tryGet(adapter, key)
		if failed {
			c.logger.Debug("chain read failed, falling through",
				zap.Int("adapter", i),
				zap.String("key", key))
			continue
		}
		if hit {
			return v, true
		}
	}
	return "", false
}

// Set writes key=value to every adapter in order. A failing adapter is
// logged and skipped so the remaining adapters still receive the write.
func (c *Chain) Set(key, value string) {
	for i, adapter := range c.adapters {
		if failed := c.try(func() { adapter.Set(key, value) }); failed {
			c.logger.Warn("chain write failed",
				zap.Int("adapter", i),
				zap.String("key", key))
		}
	}
}

// Remove deletes key from every adapter, with the same isolation as Set.
func (c *Chain) Remove(key string) {
	for i, adapter := range c.adapters {
		if failed := c.try(func() { adapter.Remove(key) }); failed {
			c.logger.Warn("chain remove failed",
				zap.Int("adapter", i),
				zap.String("key", key))
		}
	}
}

// Clear empties every adapter, with the same isolation as Set.
func (c *Chain) Clear() {
	for i, adapter := range c.adapters {
		if failed := c.try(func() { adapter.Clear() }); failed {
			c.logger.Warn("chain clear failed", zap.Int("adapter", i))
		}
	}
}

// Subscribe listens on the primary adapter only.
func (c *Chain) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	return c.adapters[0].Subscribe(fn)
}

func (c *Chain) tryGet(adapter Adapter, key string) (value string, ok, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok, failed = "", false, true
		}
	}()
	value, ok = adapter.Get(key)
	return value, ok, false
}

func (c *Chain) try(op func()) (failed bool) {
	defer func() {
		if r := recover(); r != nil {
			failed = true
		}
	}()
	op()
	return false
}
