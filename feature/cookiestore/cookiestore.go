package cookiestore

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storesync/core/storage"
)

// Store is the cookie-backed storage.Adapter, bound to one fiber request
// context. Reads come from the request's Cookie header, writes become
// Set-Cookie response headers, and a local overlay keeps reads coherent
// with writes made during the same request.
//
// Values must be cookie-safe strings; encoding structured data is the
// caller's responsibility, as everywhere else in this module.
type Store struct {
	mu        sync.Mutex
	ctx       *fiber.Ctx
	overlay   map[string]string
	tombstone map[string]struct{}
	maxAge    time.Duration
	hub       *storage.Hub
}

// Option customizes a cookie store.
type Option func(*Store)

// WithMaxAge sets the lifetime on written cookies. Zero means session
// cookies.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

// New binds a cookie store to one request context. The store must not
// outlive the request.
func New(c *fiber.Ctx, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		ctx:       c,
		overlay:   map[string]string{},
		tombstone: map[string]struct{}{},
		hub:       storage.NewHub(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cookie value for key, preferring writes made during
// this request over the inbound Cookie header.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

// Set writes a response cookie for key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	if existing, ok := s.getLocked(key); ok && existing == value {
		s.mu.Unlock()
		return
	}
	s.writeLocked(key, value)
	s.mu.Unlock()

	s.hub.Broadcast(key, false)
}

// Remove expires the cookie for key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	if _, ok := s.getLocked(key); !ok {
		s.mu.Unlock()
		return
	}
	s.expireLocked(key)
	s.mu.Unlock()

	s.hub.Broadcast(key, false)
}

// GetAll merges the request's cookies with this request's writes.
func (s *Store) GetAll() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetAll replaces the visible cookie set: every current key not present in
// values is expired, every entry of values is written.
func (s *Store) SetAll(values map[string]string) {
	s.mu.Lock()
	current := s.snapshotLocked()
	if storage.Equal(current, values) {
		s.mu.Unlock()
		return
	}
	for key := range current {
		if _, ok := values[key]; !ok {
			s.expireLocked(key)
		}
	}
	for key, value := range values {
		s.writeLocked(key, value)
	}
	s.mu.Unlock()

	s.hub.Broadcast("", true)
}

// Clear expires every visible cookie.
func (s *Store) Clear() {
	s.mu.Lock()
	current := s.snapshotLocked()
	if len(current) == 0 {
		s.mu.Unlock()
		return
	}
	for key := range current {
		s.expireLocked(key)
	}
	s.mu.Unlock()

	s.hub.Broadcast("", true)
}

// Subscribe registers fn for writes made through this store. Cookies have
// no cross-process change feed; external changes only show up on the next
// request.
func (s *Store) Subscribe(fn storage.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) getLocked(key string) (string, bool) {
	if _, dead := s.tombstone[key]; dead {
		return "", false
	}
	if value, ok := s.overlay[key]; ok {
		return value, true
	}
	if value := s.ctx.Cookies(key); value != "" {
		return value, true
	}
	return "", false
}

func (s *Store) snapshotLocked() map[string]string {
	values := map[string]string{}
	s.ctx.Request().Header.VisitAllCookie(func(key, value []byte) {
		values[string(key)] = string(value)
	})
	for key, value := range s.overlay {
		values[key] = value
	}
	for key := range s.tombstone {
		delete(values, key)
	}
	return values
}

func (s *Store) writeLocked(key, value string) {
	cookie := &fiber.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if s.maxAge > 0 {
		cookie.Expires = time.Now().Add(s.maxAge)
	}
	s.ctx.Cookie(cookie)
	s.overlay[key] = value
	delete(s.tombstone, key)
}

func (s *Store) expireLocked(key string) {
	s.ctx.Cookie(&fiber.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	delete(s.overlay, key)
	s.tombstone[key] = struct{}{}
}
