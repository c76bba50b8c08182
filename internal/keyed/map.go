package keyed

import "sync"

// Store is a keyed collection whose read-modify-write operations are
// serialized per key.
type Store[V any] interface {
	Get(key string) (V, bool)
	Put(key string, value V)
	Delete(key string)

	// Update runs fn with the current value (ok reports presence) while
	// holding the key's lock. fn returns the new value and whether to keep
	// it; keep == false removes the key.
	Update(key string, fn func(current V, ok bool) (next V, keep bool))
}

// Map is the in-memory Store.
type Map[V any] struct {
	locks *Locker

	mu    sync.RWMutex
	items map[string]V
}

// NewMap creates an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{
		locks: NewLocker(),
		items: make(map[string]V),
	}
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Put replaces the value for key.
func (m *Map[V]) Put(key string, value V) {
	unlock := m.locks.Lock(key)
	defer unlock()

	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	unlock := m.locks.Lock(key)
	defer unlock()

	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Update implements Store. The map-wide lock is not held while fn runs,
// so fn may take its time without blocking other keys.
func (m *Map[V]) Update(key string, fn func(current V, ok bool) (V, bool)) {
	unlock := m.locks.Lock(key)
	defer unlock()

	current, ok := m.Get(key)
	next, keep := fn(current, ok)

	m.mu.Lock()
	if keep {
		m.items[key] = next
	} else {
		delete(m.items, key)
	}
	m.mu.Unlock()
}

// Len returns the number of stored keys.
func (m *Map[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
