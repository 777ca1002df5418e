package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"storesync/core/storage"
)

// Store is an object-storage-backed storage.Adapter: one object per key
// under a common prefix, with the value as the object body. It is the
// custom-adapter example for remote backends; operations block on the
// network but stay synchronous, and every failure is absorbed per the
// adapter contract.
type Store struct {
	client  Client
	bucket  string
	prefix  string
	timeout time.Duration
	hub     *storage.Hub
	logger  *zap.Logger
}

// New creates an object store over client. The bucket must already exist;
// that is verified once at construction so misconfiguration surfaces
// immediately instead of as silent misses.
func New(client Client, cfg Config, logger *zap.Logger) (*Store, error) {
	if client == nil {
		return nil, errors.New("objectstore: client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		timeout: timeout,
		hub:     storage.NewHub(logger),
		logger:  logger,
	}

	ctx, cancel := s.opContext()
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("objectstore: bucket does not exist: " + cfg.Bucket)
	}
	return s, nil
}

// Get downloads the object for key. Any failure, including a missing
// object, surfaces as a miss.
func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	rc, err := s.client.GetObject(ctx, s.bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		s.logReadFailure(key, err)
		return "", false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		s.logReadFailure(key, err)
		return "", false
	}
	return string(data), true
}

// Set uploads value as the object body for key.
func (s *Store) Set(key, value string) {
	if existing, ok := s.Get(key); ok && existing == value {
		return
	}
	if !s.put(key, value) {
		return
	}
	s.hub.Broadcast(key, false)
}

// Remove deletes the object for key.
func (s *Store) Remove(key string) {
	if _, ok := s.Get(key); !ok {
		return
	}

	ctx, cancel := s.opContext()
	defer cancel()
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(key), minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("objectstore: remove failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.hub.Broadcast(key, false)
}

// GetAll lists every object under the prefix and downloads each value.
func (s *Store) GetAll() map[string]string {
	values := map[string]string{}
	for _, key := range s.listKeys() {
		if value, ok := s.Get(key); ok {
			values[key] = value
		}
	}
	return values
}

// SetAll replaces the full contents: stale objects are removed, every
// entry of values is uploaded.
func (s *Store) SetAll(values map[string]string) {
	current := s.GetAll()
	if storage.Equal(current, values) {
		return
	}

	for key := range current {
		if _, ok := values[key]; ok {
			continue
		}
		ctx, cancel := s.opContext()
		if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(key), minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("objectstore: remove failed", zap.String("key", key), zap.Error(err))
		}
		cancel()
	}
	for key, value := range values {
		s.put(key, value)
	}

	s.hub.Broadcast("", true)
}

// Clear removes every object under the prefix with one bulk call.
func (s *Store) Clear() {
	keys := s.listKeys()
	if len(keys) == 0 {
		return
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: s.objectName(key)}
	}
	close(objectsCh)

	ctx, cancel := s.opContext()
	defer cancel()
	for removeErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil {
			s.logger.Warn("objectstore: bulk remove failed",
				zap.String("object", removeErr.ObjectName),
				zap.Error(removeErr.Err))
		}
	}

	s.hub.Broadcast("", true)
}

// Subscribe registers fn for writes made through this store instance.
// Object storage has no change feed here; remote changes are picked up by
// callers polling Sync on the owning engine.
func (s *Store) Subscribe(fn storage.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) objectName(key string) string {
	return s.prefix + key
}

func (s *Store) listKeys() []string {
	ctx, cancel := s.opContext()
	defer cancel()

	var keys []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			s.logger.Debug("objectstore: list failed", zap.Error(info.Err))
			continue
		}
		keys = append(keys, strings.TrimPrefix(info.Key, s.prefix))
	}
	return keys
}

func (s *Store) put(key, value string) bool {
	ctx, cancel := s.opContext()
	defer cancel()

	body := bytes.NewReader([]byte(value))
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(key), body, int64(body.Len()), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		s.logger.Warn("objectstore: write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) logReadFailure(key string, err error) {
	// A missing object is an ordinary miss, not a diagnostic.
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
		return
	}
	s.logger.Debug("objectstore: read failed", zap.String("key", key), zap.Error(err))
}
