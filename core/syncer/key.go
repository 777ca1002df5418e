package syncer

import (
	"errors"

	"go.uber.org/zap"

	"storesync/core/observe"
	"storesync/core/storage"
)

// Value is a nullable string, mirroring a backend read: Valid is false
// when the key is absent.
type Value struct {
	String string
	Valid  bool
}

// String wraps s into a present Value.
func String(s string) Value {
	return Value{String: s, Valid: true}
}

// Null is the absent Value.
var Null = Value{}

// KeyOptions configures a Key engine.
type KeyOptions struct {
	// Listen starts the change listener immediately on construction.
	Listen bool
	// Default seeds the container when the initial chain read misses.
	// It is a presentation fallback, never written back to storage.
	Default Value
	// Logger receives diagnostics for swallowed backend failures.
	// nil means no logging.
	Logger *zap.Logger
}

// Key binds one reactive value to a single key across a fallback chain.
// Every committed user write is mirrored to all chain members; inbound
// backend changes flow back in through Sync without being re-mirrored.
type Key struct {
	chain     *storage.Chain
	key       string
	container *observe.Container[Value]
	listener  *Listener
	logger    *zap.Logger
}

// NewKey constructs a key engine over chain. The container is seeded with
// the chain's current value for key, falling back to opts.Default when the
// read misses.
func NewKey(chain *storage.Chain, key string, opts KeyOptions) (*Key, error) {
	if chain == nil {
		return nil, errors.New("syncer: chain is required")
	}
	if key == "" {
		return nil, errors.New("syncer: key is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := readChain(chain, key)
	if !seed.Valid && opts.Default.Valid {
		seed = opts.Default
	}

	k := &Key{
		chain:     chain,
		key:       key,
		container: observe.NewContainer(seed, logger),
		logger:    logger,
	}
	k.container.Subscribe(k.mirror)
	k.listener = newListener(k.startListening, logger)

	if opts.Listen {
		k.listener.On()
	}
	return k, nil
}

// Get returns the current value. No side effects.
func (k *Key) Get() Value {
	return k.container.Get()
}

// Set commits value and mirrors it to every chain member. Setting the
// current value again is a no-op: no commit, no notification, no write.
// Removal is not expressible through Set; use Remove.
func (k *Key) Set(value string) {
	next := String(value)
	if k.container.Get() == next {
		return
	}
	k.container.Commit(next, observe.OriginUser)
}

// Remove deletes the key from every chain member and resets the container
// to Null, regardless of any construction-time default.
func (k *Key) Remove() {
	k.chain.Remove(k.key)
	if cur := k.container.Get(); !cur.Valid {
		return
	}
	// The null commit still carries the user origin; the mirror refuses it
	// because only present strings are written to storage.
	k.container.Commit(Null, observe.OriginUser)
}

// Sync forces a chain re-read and commits the result if it differs from
// the current value. It reflects true backend state, including absence:
// the construction default is never applied here.
func (k *Key) Sync() {
	next := readChain(k.chain, k.key)
	if k.container.Get() == next {
		return
	}
	k.container.Commit(next, observe.OriginSync)
}

// Subscribe observes the current value. fn runs immediately with the
// current value and after every committed change. The returned cancel func
// is idempotent.
func (k *Key) Subscribe(fn func(value Value)) (cancel func()) {
	return k.container.Subscribe(func(v Value, _ observe.Origin) { fn(v) })
}

// Listener exposes the change-event subscription controls.
func (k *Key) Listener() *Listener {
	return k.listener
}

// mirror writes user commits through to the chain. Sync-origin commits and
// null values are never mirrored; identical backend state is left alone.
func (k *Key) mirror(v Value, origin observe.Origin) {
	if origin != observe.OriginUser || !v.Valid {
		return
	}
	if current, ok := k.chain.Get(k.key); ok && current == v.String {
		return
	}
	k.chain.Set(k.key, v.String)
}

// startListening subscribes to the chain's primary adapter, routing events
// for this engine's key (or bulk events) into Sync.
func (k *Key) startListening() func() {
	return k.chain.Subscribe(func(changed string, bulk bool) {
		if bulk || changed == k.key {
			k.Sync()
		}
	})
}

func readChain(chain *storage.Chain, key string) Value {
	v, ok := chain.Get(key)
	return Value{String: v, Valid: ok}
}
