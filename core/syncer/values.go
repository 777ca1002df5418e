package syncer

import (
	"errors"

	"go.uber.org/zap"

	"storesync/core/observe"
	"storesync/core/storage"
)

// ValuesOptions configures a Values engine.
type ValuesOptions struct {
	// Listen starts the change listener immediately on construction.
	Listen bool
	// Logger receives diagnostics for swallowed backend failures.
	// nil means no logging.
	Logger *zap.Logger
}

// Values mirrors the entire key space of a single adapter into a reactive
// snapshot. Unlike Key it never spans a chain: one engine, one backend.
// Every committed user snapshot is written back with SetAll; inbound
// backend changes flow in through Sync without being re-mirrored. All
// commits are equality-gated, so no-op mutations never notify.
type Values struct {
	adapter   storage.Adapter
	container *observe.Container[map[string]string]
	listener  *Listener
	logger    *zap.Logger
}

// NewValues constructs a values engine over adapter, seeding the snapshot
// from the adapter's current contents.
func NewValues(adapter storage.Adapter, opts ValuesOptions) (*Values, error) {
	if adapter == nil {
		return nil, errors.New("syncer: adapter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	v := &Values{
		adapter:   adapter,
		container: observe.NewContainer(storage.Clone(adapter.GetAll()), logger),
		logger:    logger,
	}
	v.container.Subscribe(v.mirror)
	v.listener = newListener(v.startListening, logger)

	if opts.Listen {
		v.listener.On()
	}
	return v, nil
}

// Get returns a copy of the current snapshot.
func (v *Values) Get() map[string]string {
	return storage.Clone(v.container.Get())
}

// GetKey returns the value stored under key in the current snapshot. ok is
// false when the key is absent, indistinguishable from a missed point read.
func (v *Values) GetKey(key string) (value string, ok bool) {
	value, ok = v.container.Get()[key]
	return value, ok
}

// Set commits a snapshot with key set to value. Setting a key to its
// current value is a no-op.
func (v *Values) Set(key, value string) {
	cur := v.container.Get()
	if existing, ok := cur[key]; ok && existing == value {
		return
	}
	next := storage.Clone(cur)
	next[key] = value
	v.container.Commit(next, observe.OriginUser)
}

// Update shallow-merges partial into the current snapshot.
func (v *Values) Update(partial map[string]string) {
	cur := v.container.Get()
	next := storage.Clone(cur)
	for key, value := range partial {
		next[key] = value
	}
	if storage.Equal(next, cur) {
		return
	}
	v.container.Commit(next, observe.OriginUser)
}

// UpdateFunc replaces the snapshot with fn's return value. fn receives a
// copy of the full current snapshot and must return the full next snapshot;
// there is no merging. A nil return commits an empty snapshot.
func (v *Values) UpdateFunc(fn func(current map[string]string) map[string]string) {
	cur := v.container.Get()
	next := storage.Clone(fn(storage.Clone(cur)))
	if storage.Equal(next, cur) {
		return
	}
	v.container.Commit(next, observe.OriginUser)
}

// Remove deletes the given keys from the snapshot. Removing only absent
// keys is a no-op.
func (v *Values) Remove(keys ...string) {
	cur := v.container.Get()
	next := storage.Clone(cur)
	for _, key := range keys {
		delete(next, key)
	}
	if storage.Equal(next, cur) {
		return
	}
	v.container.Commit(next, observe.OriginUser)
}

// Clear commits an empty snapshot. Clearing an already-empty store is a
// no-op.
func (v *Values) Clear() {
	if len(v.container.Get()) == 0 {
		return
	}
	v.container.Commit(map[string]string{}, observe.OriginUser)
}

// Sync re-reads the adapter's full contents and commits them if they
// differ from the current snapshot.
func (v *Values) Sync() {
	next := storage.Clone(v.adapter.GetAll())
	if storage.Equal(next, v.container.Get()) {
		return
	}
	v.container.Commit(next, observe.OriginSync)
}

// Subscribe observes the snapshot. fn runs immediately with the current
// snapshot and after every committed change; the snapshot passed to fn
// must be treated as read-only. The returned cancel func is idempotent.
func (v *Values) Subscribe(fn func(snapshot map[string]string)) (cancel func()) {
	return v.container.Subscribe(func(snap map[string]string, _ observe.Origin) { fn(snap) })
}

// Listener exposes the change-event subscription controls.
func (v *Values) Listener() *Listener {
	return v.listener
}

// mirror writes user commits through with SetAll, skipped when the
// adapter already reports identical contents.
func (v *Values) mirror(snap map[string]string, origin observe.Origin) {
	if origin != observe.OriginUser {
		return
	}
	if storage.Equal(snap, v.adapter.GetAll()) {
		return
	}
	v.adapter.SetAll(storage.Clone(snap))
}

// startListening routes every adapter change event, point or bulk, into
// Sync.
func (v *Values) startListening() func() {
	return v.adapter.Subscribe(func(string, bool) {
		v.Sync()
	})
}
