package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/core/storage"
	"storesync/core/syncer"
)

func newTestStore(t *testing.T, watch bool) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(Config{Path: path, Watch: watch}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t, false)

	_, ok := s.Get("k")
	assert.False(t, ok)

	s.Set("k", "v")
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	s.Remove("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestContentsPersistAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	first, err := New(Config{Path: path}, nil)
	require.NoError(t, err)
	first.SetAll(map[string]string{"theme": "dark", "lang": "en"})
	require.NoError(t, first.Close())

	second, err := New(Config{Path: path}, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, map[string]string{"theme": "dark", "lang": "en"}, second.GetAll())
}

func TestCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := New(Config{Path: path}, nil)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Empty(t, s.GetAll())
}

func TestFileFormatIsFlatJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(Config{Path: path}, nil)
	require.NoError(t, err)
	defer s.Close()

	s.Set("a", "1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string{"a": "1"}, decoded)
}

func TestLocalWritesNotifySubscribers(t *testing.T) {
	s := newTestStore(t, false)

	var keys []string
	stop := s.Subscribe(func(key string, bulk bool) { keys = append(keys, key) })
	defer stop()

	s.Set("a", "1")
	s.Remove("a")

	assert.Equal(t, []string{"a", "a"}, keys)
}

func TestExternalWriteTriggersBulkEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(Config{Path: path, Watch: true}, nil)
	require.NoError(t, err)
	defer s.Close()

	bulk := make(chan struct{}, 8)
	stop := s.Subscribe(func(key string, isBulk bool) {
		if isBulk {
			bulk <- struct{}{}
		}
	})
	defer stop()

	// Simulate another process replacing the file.
	data, err := json.Marshal(map[string]string{"theme": "dark"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	select {
	case <-bulk:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a bulk change event from the watcher")
	}

	v, ok := s.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestEngineSeesExternalFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(Config{Path: path, Watch: true}, nil)
	require.NoError(t, err)
	defer s.Close()

	chain, err := storage.NewChain(nil, s)
	require.NoError(t, err)
	k, err := syncer.NewKey(chain, "theme", syncer.KeyOptions{Listen: true})
	require.NoError(t, err)
	defer k.Listener().Off()

	updated := make(chan syncer.Value, 8)
	cancel := k.Subscribe(func(v syncer.Value) {
		if v.Valid {
			updated <- v
		}
	})
	defer cancel()

	data, err := json.Marshal(map[string]string{"theme": "dark"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	select {
	case v := <-updated:
		assert.Equal(t, syncer.String("dark"), v)
	case <-time.After(3 * time.Second):
		t.Fatal("expected the engine to pick up the external write")
	}
}

func TestCloseStopsWatcherButNotStore(t *testing.T) {
	s := newTestStore(t, true)

	require.NoError(t, s.Close())

	s.Set("k", "v")
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
