// Package sessionstore implements the session-scoped storage adapter: an
// in-memory store whose entire contents expire together after a period of
// inactivity, the way session storage outlives a page but not the session.
//
// Expiry is lazy. No timer runs; the first access past the deadline
// observes an empty store, and subscribers receive a single bulk change
// event so listening engines re-read. Every access, read or write,
// refreshes the deadline.
package sessionstore
