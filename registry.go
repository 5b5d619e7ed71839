package hellod3d

import (
	"sync"
	"weak"
)

// Registry maps native handles to the objects owning them. It only keeps
// weak references, so an entry never prolongs the lifetime of its owner:
// once the owner is garbage collected the entry reads as absent.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]weak.Pointer[V]
}

// NewRegistry returns an empty registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]weak.Pointer[V]),
	}
}

// Register associates key with v, replacing any previous owner.
func (r *Registry[K, V]) Register(key K, v *V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = weak.Make(v)
}

// Lookup returns the live owner of key. Entries whose owner has been
// collected are pruned and reported as absent.
func (r *Registry[K, V]) Lookup(key K) (*V, bool) {
	r.mu.RLock()
	wp, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if v := wp.Value(); v != nil {
		return v, true
	}

	r.mu.Lock()
	if cur, ok := r.entries[key]; ok && cur == wp {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	return nil, false
}

// Unregister erases key and returns the number of entries left.
func (r *Registry[K, V]) Unregister(key K) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return len(r.entries)
}

// Len returns the number of registered entries, including the ones whose
// owner was collected but not yet pruned.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
