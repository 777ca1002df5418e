package storage

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub is a change-notification fan-out shared by the adapter
// implementations. Broadcast delivers synchronously, in subscription
// order, and isolates panicking subscribers so one failing listener does
// not starve the rest.
type Hub struct {
	mu     sync.Mutex
	order  []string
	subs   map[string]ChangeFunc
	logger *zap.Logger
}

// NewHub creates an empty hub. A nil logger silences diagnostics.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   map[string]ChangeFunc{},
		logger: logger,
	}
}

// Subscribe registers fn and returns an idempotent unsubscribe func.
func (h *Hub) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	id := uuid.NewString()

	h.mu.Lock()
	h.order = append(h.order, id)
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; !ok {
			return
		}
		delete(h.subs, id)
		for i, existing := range h.order {
			if existing == id {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
}

// Broadcast notifies every subscriber of a change to key. Pass bulk=true
// (with an empty key) when the whole backend may have changed.
func (h *Hub) Broadcast(key string, bulk bool) {
	h.mu.Lock()
	fns := make([]ChangeFunc, 0, len(h.order))
	for _, id := range h.order {
		if fn, ok := h.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		h.notify(fn, key, bulk)
	}
}

func (h *Hub) notify(fn ChangeFunc, key string, bulk bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("change subscriber panicked",
				zap.String("key", key),
				zap.Bool("bulk", bulk),
				zap.Any("panic", r))
		}
	}()
	fn(key, bulk)
}
