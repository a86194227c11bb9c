// Package fanout keeps the listener sets behind the observable adapters.
package fanout

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is a concurrency-safe set of listeners keyed by random IDs.
type Registry[T any] struct {
	mu        sync.RWMutex
	listeners map[string]T
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{listeners: map[string]T{}}
}

// Add registers fn and returns its ID.
func (r *Registry[T]) Add(fn T) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.listeners[id] = fn
	r.order = append(r.order, id)
	r.mu.Unlock()
	return id
}

// Remove unregisters id and reports whether it was present.
func (r *Registry[T]) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listeners[id]; !ok {
		return false
	}
	delete(r.listeners, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the listener registered under id.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.listeners[id]
	return fn, ok
}

// Len returns the number of listeners.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Snapshot returns the listeners in registration order. Callers invoke them
// without holding the registry lock, so listeners may add or remove others.
func (r *Registry[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.listeners[id])
	}
	return out
}

// Clear removes every listener.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.listeners = map[string]T{}
	r.order = nil
	r.mu.Unlock()
}
