package storage

// ChangeFunc receives change notifications from a backend. key names the
// changed entry; bulk set to true means the whole backend may have changed
// and the caller should re-read everything (key is empty in that case).
type ChangeFunc func(key string, bulk bool)

// Adapter is the capability set a storage backend must expose. Every
// method is synchronous and must not panic: internal failures are absorbed
// by the implementation (typically logged at debug level) and surface as a
// miss or a no-op, never as an error to the caller.
//
// Built-in implementations: Memory (this package), filestore (JSON file),
// sessionstore (expiring memory), cookiestore (fiber cookies), dbstore
// (gorm), objectstore (minio). Custom backends only need these seven
// operations.
type Adapter interface {
	// Get returns the value stored under key. ok is false on a miss.
	Get(key string) (value string, ok bool)

	// Set stores value under key.
	Set(key, value string)

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string)

	// GetAll returns the full contents of the backend. Never nil.
	GetAll() map[string]string

	// SetAll replaces the full contents of the backend with values.
	SetAll(values map[string]string)

	// Clear removes every entry.
	Clear()

	// Subscribe registers fn for change notifications and returns an
	// idempotent unsubscribe func. Backends without a change feed return
	// a callable no-op.
	Subscribe(fn ChangeFunc) (unsubscribe func())
}
