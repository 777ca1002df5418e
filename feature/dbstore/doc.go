// Package dbstore implements the database-backed storage adapter on top
// of GORM.
//
// All logical stores share one kv_entries table, scoped by store name, so
// several engines (or several applications on one database) can keep
// independent key spaces without extra migrations:
//
//	db, err := dbstore.Connect(cfg)
//	settings, err := dbstore.New(db, "settings", dbstore.Options{})
//	session, err := dbstore.New(db, "session", dbstore.Options{})
//
// Supported drivers are mysql and sqlite.
//
// # Change Events
//
// A relational database offers no portable change feed, so Subscribe only
// delivers writes made through stores sharing the same Hub in this
// process. Changes made by other processes are picked up by calling Sync
// on the owning engine, typically on a poll schedule chosen by the caller.
//
// # Failure Policy
//
// Query failures never escape: reads degrade to a miss or an empty store,
// writes to a logged no-op, matching the adapter contract.
package dbstore
