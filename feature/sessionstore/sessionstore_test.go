package sessionstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/core/storage"
	"storesync/core/syncer"
)

// fakeClock steps time manually so expiry is deterministic.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	s := New(ttl, nil)
	s.now = clock.now
	s.deadline = clock.current.Add(s.ttl)
	return s, clock
}

func TestRoundTrip(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	s.Set("k", "v")
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	s.Remove("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	s := New(0, nil)
	assert.Equal(t, DefaultTTL, s.ttl)
}

func TestContentsExpireTogether(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.SetAll(map[string]string{"a": "1", "b": "2"})

	clock.advance(2 * time.Minute)

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Empty(t, s.GetAll())
}

func TestAccessRefreshesDeadline(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Set("k", "v")

	// Keep touching the store just inside the deadline.
	for i := 0; i < 4; i++ {
		clock.advance(50 * time.Second)
		_, ok := s.Get("k")
		require.True(t, ok, "active session must not expire")
	}
}

func TestExpiryBroadcastsBulkEvent(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Set("k", "v")

	var bulks int
	stop := s.Subscribe(func(key string, bulk bool) {
		if bulk {
			bulks++
		}
	})
	defer stop()

	clock.advance(2 * time.Minute)
	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, bulks)
}

func TestNoOpMutationsDoNotNotify(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	s.Set("k", "v")

	calls := 0
	stop := s.Subscribe(func(string, bool) { calls++ })
	defer stop()

	s.Set("k", "v")
	s.Remove("absent")
	s.SetAll(map[string]string{"k": "v"})
	s.Clear()
	s.Clear()

	assert.Equal(t, 1, calls, "only the first clear changes anything")
}

func TestEngineObservesExpiry(t *testing.T) {
	s, clock := newTestStore(time.Minute)

	v, err := syncer.NewValues(s, syncer.ValuesOptions{Listen: true})
	require.NoError(t, err)
	defer v.Listener().Off()

	v.Set("k", "1")
	assert.Equal(t, map[string]string{"k": "1"}, v.Get())

	clock.advance(2 * time.Minute)

	// First access past the deadline drops the contents and notifies; the
	// listening engine re-reads and commits the empty snapshot.
	assert.Empty(t, s.GetAll())
	assert.Empty(t, v.Get())
}

func TestWorksAsChainFallback(t *testing.T) {
	session, _ := newTestStore(time.Minute)
	session.Set("theme", "dark")
	primary := storage.NewMemory(nil)

	chain, err := storage.NewChain(nil, primary, session)
	require.NoError(t, err)

	k, err := syncer.NewKey(chain, "theme", syncer.KeyOptions{})
	require.NoError(t, err)

	assert.Equal(t, syncer.String("dark"), k.Get())
}
