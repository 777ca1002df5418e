// Package syncer keeps reactive in-process state synchronized with
// key-value storage backends.
//
// Two engine flavors cover the two binding shapes:
//
//  1. Key binds a single nullable string to one key across a storage.Chain,
//     so a healthy fallback can answer reads when the primary is broken
//     and every write reaches all chain members.
//
//  2. Values mirrors the entire contents of exactly one adapter as a flat
//     string snapshot. Chains are not supported for this flavor.
//
// # Write-back and read-back
//
// Both engines observe their own container: a commit that originates from
// the engine's API (set, update, remove, clear) is mirrored out to the
// backend, and a commit that originates from a forced re-read (Sync) is
// not. The commit origin replaces the suppression flag a naive
// implementation would toggle around programmatic writes, so the mirror
// never has to consult ambient mutable state.
//
// Every commit is equality-gated. Setting a key to its current value,
// merging an identical snapshot, removing an absent key or clearing an
// empty store does not commit, does not notify and does not touch the
// backend. This gate is also what stops a local write from echoing: the
// write triggers a backend change event, the event triggers Sync, Sync
// re-reads exactly what was written and commits nothing.
//
// # Listening
//
// Each engine owns a Listener routing backend change events into Sync.
// The key engine reacts to events for its own key and to bulk events; the
// values engine reacts to everything. On/Off are idempotent, the active
// state is observable, and nothing is torn down implicitly: an engine
// going out of use must have its listener switched Off by its owner.
//
// # Failure semantics
//
// Backend read failures surface as absence, never as errors. Write
// failures are absorbed and logged by the adapter or chain. The only
// construction-time errors are misuse: a nil chain or adapter, or an
// empty key.
package syncer
