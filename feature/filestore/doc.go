// Package filestore implements the persistent storage adapter: a flat
// string map stored as a single JSON file.
//
// It is the closest analog to browser-local persistent storage. Contents
// survive the process, writes are atomic (temp file + rename), and when
// watching is enabled, writes from other processes arrive as bulk change
// events through fsnotify, so a listening engine picks them up without
// polling.
//
// # Failure Policy
//
// Per the adapter contract the store never panics into the engine. A
// missing file is an empty store; unreadable or corrupt contents are
// logged at debug level and read as empty; failed writes are logged at
// warn level and dropped.
//
// # Usage
//
//	store, err := filestore.New(filestore.Config{Path: "state.json"}, log)
//	defer store.Close()
package filestore
