// Package objectstore implements a storage adapter over S3-compatible
// object storage, one object per key under a configurable prefix.
//
// It doubles as the reference for custom adapters: any backend reachable
// through a blocking client can satisfy the seven-operation contract the
// same way. Operations stay synchronous (they block on the network,
// bounded by the configured timeout) and failures never escape: reads
// degrade to misses, writes to logged no-ops.
//
// # Client Abstraction
//
// The Client interface wraps the MinIO client so the store can be unit
// tested against the testify mock in objectstore/mocks, and so it works
// with both AWS S3 and self-hosted MinIO.
//
//	client, err := objectstore.NewClient(cfg)
//	store, err := objectstore.New(client, cfg, log)
package objectstore
