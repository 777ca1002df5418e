package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"storesync/core/storage"
)

// Store is the persistent storage.Adapter: a flat string map serialized as
// JSON to a single file. Writes go through a temp file and an atomic
// rename so a concurrent reader never observes a half-written store.
//
// When watching is enabled, writes to the file by other processes are
// surfaced as bulk change events, the same way a second browser tab shows
// up on a shared persistent backend.
type Store struct {
	path    string
	mu      sync.Mutex
	hub     *storage.Hub
	watcher *fsnotify.Watcher
	done    chan struct{}
	logger  *zap.Logger
}

// New creates a file-backed store at cfg.Path, creating parent directories
// as needed. The file itself is created lazily on first write. Watcher
// setup failures degrade to an event-less store and are logged, they do
// not fail construction.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("filestore: path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create directory %q: %w", dir, err)
	}

	s := &Store{
		path:   cfg.Path,
		hub:    storage.NewHub(logger),
		done:   make(chan struct{}),
		logger: logger,
	}

	if cfg.Watch {
		if err := s.startWatcher(dir); err != nil {
			logger.Warn("filestore: change notifications disabled", zap.Error(err))
		}
	}
	return s, nil
}

// Close stops the filesystem watcher. The store remains usable for reads
// and writes afterwards; only change events stop.
func (s *Store) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher == nil {
		return nil
	}
	close(s.done)
	return watcher.Close()
}

// Get returns the value stored under key. Read failures surface as a miss.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.load()[key]
	return value, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	values := s.load()
	if existing, ok := values[key]; ok && existing == value {
		s.mu.Unlock()
		return
	}
	values[key] = value
	s.save(values)
	s.mu.Unlock()

	s.hub.Broadcast(key, false)
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	values := s.load()
	if _, ok := values[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(values, key)
	s.save(values)
	s.mu.Unlock()

	s.hub.Broadcast(key, false)
}

// GetAll returns the full file contents.
func (s *Store) GetAll() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// SetAll replaces the full file contents.
func (s *Store) SetAll(values map[string]string) {
	s.mu.Lock()
	if storage.Equal(s.load(), values) {
		s.mu.Unlock()
		return
	}
	s.save(storage.Clone(values))
	s.mu.Unlock()

	s.hub.Broadcast("", true)
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.load()) == 0 {
		s.mu.Unlock()
		return
	}
	s.save(map[string]string{})
	s.mu.Unlock()

	s.hub.Broadcast("", true)
}

// Subscribe registers fn for change notifications: point events for local
// writes and bulk events for writes observed through the filesystem
// watcher.
func (s *Store) Subscribe(fn storage.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// load reads and decodes the file. Every failure degrades to an empty map:
// a missing file is an empty store, a corrupt one is logged and treated
// the same. Caller holds mu.
func (s *Store) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("filestore: read failed", zap.String("path", s.path), zap.Error(err))
		}
		return map[string]string{}
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Debug("filestore: decode failed", zap.String("path", s.path), zap.Error(err))
		return map[string]string{}
	}
	return values
}

// save encodes values and atomically replaces the file. Failures are
// logged and swallowed per the adapter contract. Caller holds mu.
func (s *Store) save(values map[string]string) {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		s.logger.Warn("filestore: encode failed", zap.Error(err))
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Warn("filestore: write failed", zap.String("path", tmp), zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("filestore: rename failed", zap.String("path", s.path), zap.Error(err))
	}
}

// startWatcher watches the containing directory (watching the file itself
// breaks across atomic renames) and forwards events for our file as bulk
// changes. Our own saves also rename into place, so self-writes produce a
// redundant bulk event; the engines' equality gate absorbs it.
func (s *Store) startWatcher(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				s.hub.Broadcast("", true)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Debug("filestore: watcher error", zap.Error(err))
			case <-s.done:
				return
			}
		}
	}()
	return nil
}
