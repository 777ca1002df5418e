// Package storage defines the backend capability contract the sync
// engines are written against, and the plumbing shared by every backend.
//
// # Adapter
//
// Adapter is the seven-operation contract (point read/write/delete, bulk
// read/replace/clear, change subscription) a backend must satisfy. The
// contract is deliberately hostile to surprises: every operation is
// synchronous, values are flat strings, and implementations absorb their
// own failures: a broken backend reports a miss or performs a no-op,
// it never panics into the engine.
//
// # Chain
//
// Chain folds an ordered list of adapters into one logical backend with
// fallback-read, broadcast-write and primary-listen semantics:
//
//	primary, _ := filestore.New(cfg, log)
//	chain, err := storage.NewChain(log, primary, storage.NewMemory(log))
//
// Reads return the first value found, skipping adapters that misbehave.
// Writes and removals go to every adapter so fallbacks stay warm. Change
// events are taken from the first adapter only.
//
// A chain is never empty; NewChain rejects zero adapters at construction
// time.
//
// # Equality Guard
//
// Equal is the structural equality check over flat string maps used
// everywhere a store decides whether a mutation is a no-op. It is what
// keeps a write-notify-reread cycle from looping forever.
//
// # Hub
//
// Hub is the subscriber registry backends use to implement Subscribe.
// Delivery is synchronous and panic-isolated per subscriber.
package storage
