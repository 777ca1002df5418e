package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyAdapter panics on the configured operations, standing in for a
// backend whose internal error handling is broken.
type faultyAdapter struct {
	*Memory
	failGet    bool
	failSet    bool
	failRemove bool
	failClear  bool
}

func newFaultyAdapter() *faultyAdapter {
	return &faultyAdapter{Memory: NewMemory(nil)}
}

func (f *faultyAdapter) Get(key string) (string, bool) {
	if f.failGet {
		panic("get failed")
	}
	return f.Memory.Get(key)
}

func (f *faultyAdapter) Set(key, value string) {
	if f.failSet {
		panic("set failed")
	}
	f.Memory.Set(key, value)
}

func (f *faultyAdapter) Remove(key string) {
	if f.failRemove {
		panic("remove failed")
	}
	f.Memory.Remove(key)
}

func (f *faultyAdapter) Clear() {
	if f.failClear {
		panic("clear failed")
	}
	f.Memory.Clear()
}

func TestNewChainRejectsEmpty(t *testing.T) {
	chain, err := NewChain(nil)
	assert.Nil(t, chain)
	assert.ErrorIs(t, err, ErrEmptyChain)
}

func TestNewChainRejectsNilAdapter(t *testing.T) {
	chain, err := NewChain(nil, NewMemory(nil), nil)
	assert.Nil(t, chain)
	assert.Error(t, err)
}

func TestChainGetFallbackOrdering(t *testing.T) {
	primary := NewMemory(nil)
	fallback := NewMemory(nil)
	chain, err := NewChain(nil, primary, fallback)
	require.NoError(t, err)

	t.Run("primary wins when both hold a value", func(t *testing.T) {
		primary.Set("k", "from-primary")
		fallback.Set("k", "from-fallback")

		v, ok := chain.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "from-primary", v)
	})

	t.Run("fallback answers when primary misses", func(t *testing.T) {
		primary.Remove("k")

		v, ok := chain.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "from-fallback", v)
	})

	t.Run("miss when no adapter holds a value", func(t *testing.T) {
		fallback.Remove("k")

		_, ok := chain.Get("k")
		assert.False(t, ok)
	})
}

func TestChainGetSkipsFailingAdapter(t *testing.T) {
	broken := newFaultyAdapter()
	broken.failGet = true
	healthy := NewMemory(nil)
	healthy.Set("k", "v")

	chain, err := NewChain(nil, broken, healthy)
	require.NoError(t, err)

	v, ok := chain.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestChainGetAllAdaptersFail(t *testing.T) {
	a := newFaultyAdapter()
	a.failGet = true
	b := newFaultyAdapter()
	b.failGet = true

	chain, err := NewChain(nil, a, b)
	require.NoError(t, err)

	v, ok := chain.Get("k")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestChainSetBroadcastsToEveryAdapter(t *testing.T) {
	a := NewMemory(nil)
	b := NewMemory(nil)
	chain, err := NewChain(nil, a, b)
	require.NoError(t, err)

	chain.Set("k", "v")

	for _, adapter := range []*Memory{a, b} {
		v, ok := adapter.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	}
}

func TestChainWriteFailureIsIsolated(t *testing.T) {
	broken := newFaultyAdapter()
	broken.failSet = true
	broken.failRemove = true
	broken.failClear = true
	healthy := NewMemory(nil)

	chain, err := NewChain(nil, broken, healthy)
	require.NoError(t, err)

	assert.NotPanics(t, func() { chain.Set("k", "v") })
	v, ok := healthy.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	assert.NotPanics(t, func() { chain.Remove("k") })
	_, ok = healthy.Get("k")
	assert.False(t, ok)

	healthy.Set("x", "1")
	assert.NotPanics(t, func() { chain.Clear() })
	assert.Empty(t, healthy.GetAll())
}

func TestChainRemoveBroadcasts(t *testing.T) {
	a := NewMemory(nil)
	b := NewMemory(nil)
	a.Set("k", "v")
	b.Set("k", "v")

	chain, err := NewChain(nil, a, b)
	require.NoError(t, err)

	chain.Remove("k")

	_, ok := a.Get("k")
	assert.False(t, ok)
	_, ok = b.Get("k")
	assert.False(t, ok)
}

func TestChainSubscribesToPrimaryOnly(t *testing.T) {
	primary := NewMemory(nil)
	fallback := NewMemory(nil)
	chain, err := NewChain(nil, primary, fallback)
	require.NoError(t, err)

	var events []string
	unsubscribe := chain.Subscribe(func(key string, bulk bool) {
		events = append(events, key)
	})
	defer unsubscribe()

	fallback.Set("k", "from-fallback")
	assert.Empty(t, events, "fallback events must not reach chain subscribers")

	primary.Set("k", "from-primary")
	assert.Equal(t, []string{"k"}, events)
}
