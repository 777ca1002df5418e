package sessionstore

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"storesync/core/storage"
)

// DefaultTTL is the session lifetime used when the configured TTL is zero
// or negative.
const DefaultTTL = 30 * time.Minute

// Store is the session-scoped storage.Adapter: an in-memory map whose
// entire contents expire together once the session has been idle for TTL.
// Every read and write refreshes the deadline; after the deadline passes,
// the next access observes an empty store and subscribers receive a bulk
// change event.
type Store struct {
	mu       sync.Mutex
	values   map[string]string
	deadline time.Time
	ttl      time.Duration
	hub      *storage.Hub

	// now is swapped out by tests to step time deterministically.
	now func() time.Time
}

// New creates a session store with the given idle TTL.
func New(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		values: map[string]string{},
		ttl:    ttl,
		hub:    storage.NewHub(logger),
		now:    time.Now,
	}
	s.deadline = s.now().Add(ttl)
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	expired := s.expireLocked()
	value, ok := s.values[key]
	s.touchLocked()
	s.mu.Unlock()

	if expired {
		s.hub.Broadcast("", true)
	}
	return value, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	expired := s.expireLocked()
	changed := true
	if existing, ok := s.values[key]; ok && existing == value {
		changed = false
	}
	if changed {
		s.values[key] = value
	}
	s.touchLocked()
	s.mu.Unlock()

	if expired {
		s.hub.Broadcast("", true)
	}
	if changed {
		s.hub.Broadcast(key, false)
	}
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	expired := s.expireLocked()
	_, changed := s.values[key]
	if changed {
		delete(s.values, key)
	}
	s.touchLocked()
	s.mu.Unlock()

	if expired {
		s.hub.Broadcast("", true)
	}
	if changed {
		s.hub.Broadcast(key, false)
	}
}

// GetAll returns a copy of the full contents.
func (s *Store) GetAll() map[string]string {
	s.mu.Lock()
	expired := s.expireLocked()
	snapshot := storage.Clone(s.values)
	s.touchLocked()
	s.mu.Unlock()

	if expired {
		s.hub.Broadcast("", true)
	}
	return snapshot
}

// SetAll replaces the full contents.
func (s *Store) SetAll(values map[string]string) {
	s.mu.Lock()
	expired := s.expireLocked()
	changed := !storage.Equal(s.values, values)
	if changed {
		s.values = storage.Clone(values)
	}
	s.touchLocked()
	s.mu.Unlock()

	if expired || changed {
		s.hub.Broadcast("", true)
	}
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	expired := s.expireLocked()
	changed := len(s.values) > 0
	if changed {
		s.values = map[string]string{}
	}
	s.touchLocked()
	s.mu.Unlock()

	if expired || changed {
		s.hub.Broadcast("", true)
	}
}

// Subscribe registers fn for change notifications. Expiry surfaces as a
// bulk change on the first access past the deadline.
func (s *Store) Subscribe(fn storage.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// expireLocked drops the contents when the deadline has passed. It
// reports whether anything was dropped. Caller holds mu.
func (s *Store) expireLocked() bool {
	if s.now().Before(s.deadline) || len(s.values) == 0 {
		return false
	}
	s.values = map[string]string{}
	return true
}

// touchLocked pushes the deadline out by one TTL. Caller holds mu.
func (s *Store) touchLocked() {
	s.deadline = s.now().Add(s.ttl)
}
