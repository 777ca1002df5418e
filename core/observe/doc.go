// Package observe provides the observer primitive the sync engines are
// built on: a value container that fans out every commit synchronously to
// its subscribers.
//
// The contract is intentionally narrow:
//   - Get returns the current value.
//   - Commit replaces it and notifies all subscribers, in subscription
//     order, on the committing goroutine. There is no buffering.
//   - Subscribe invokes the callback immediately with the current value
//     (OriginReplay), then on every later commit.
//
// # Commit Origins
//
// Every commit carries an Origin. The engines mirror OriginUser commits
// out to storage and treat OriginSync commits as inbound backend state,
// which breaks the echo loop between a local write, the storage change
// event it causes, and the re-read that would otherwise be written back.
//
// # Failure Isolation
//
// A panicking subscriber is recovered and logged; remaining subscribers
// still receive the value.
package observe
