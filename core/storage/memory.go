package storage

import (
	"sync"

	"go.uber.org/zap"
)

// Memory is the in-memory Adapter. It keeps a flat string map guarded by a
// RWMutex and broadcasts every mutation through a Hub, so two engines
// sharing one Memory instance observe each other's writes the same way two
// processes sharing a persistent backend would.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	hub    *Hub
}

// NewMemory creates an empty in-memory adapter.
func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{
		values: map[string]string{},
		hub:    NewHub(logger),
	}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	value, ok := m.values[key]
	m.mu.RUnlock()
	return value, ok
}

// Set stores value under key and notifies subscribers.
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	if existing, ok := m.values[key]; ok && existing == value {
		m.mu.Unlock()
		return
	}
	m.values[key] = value
	m.mu.Unlock()

	m.hub.Broadcast(key, false)
}

// Remove deletes key and notifies subscribers. Absent keys are a no-op.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	if _, ok := m.values[key]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.values, key)
	m.mu.Unlock()

	m.hub.Broadcast(key, false)
}

// GetAll returns a copy of the full contents.
func (m *Memory) GetAll() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Clone(m.values)
}

// SetAll replaces the full contents and notifies subscribers of a bulk
// change. Replacing with an equal snapshot is a no-op.
func (m *Memory) SetAll(values map[string]string) {
	m.mu.Lock()
	if Equal(m.values, values) {
		m.mu.Unlock()
		return
	}
	m.values = Clone(values)
	m.mu.Unlock()

	m.hub.Broadcast("", true)
}

// Clear removes every entry. Clearing an empty adapter is a no-op.
func (m *Memory) Clear() {
	m.mu.Lock()
	if len(m.values) == 0 {
		m.mu.Unlock()
		return
	}
	m.values = map[string]string{}
	m.mu.Unlock()

	m.hub.Broadcast("", true)
}

// Subscribe registers fn for change notifications.
func (m *Memory) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	return m.hub.Subscribe(fn)
}
