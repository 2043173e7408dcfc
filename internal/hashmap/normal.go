package hashmap

import "sync"

// NormalMap is a thread safe map using normal hash map behaviour.
// Basically it simply wraps the builtin map type with a RWMutex mechanism in order to provide thread safety.
type NormalMap[K comparable, V any] struct {
	mtx        sync.RWMutex
	underlying map[K]V
}

// NewNormal creates a new normal thread safe map
func NewNormal[K comparable, V any]() *NormalMap[K, V] {
	return &NormalMap[K, V]{
		underlying: make(map[K]V),
	}
}

// Size returns the amount of stored key-value pairs
func (obj *NormalMap[K, V]) Size() int {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return len(obj.underlying)
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
// the type's zero value
func (obj *NormalMap[K, V]) Lookup(key K) (V, bool) {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	val, ok := obj.underlying[key]
	return val, ok
}

// Unset deletes the value assigned to given key
func (obj *NormalMap[K, V]) Unset(key K) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	delete(obj.underlying, key)
}

// Compute atomically replaces the value assigned to the given key by the result of fn
func (obj *NormalMap[K, V]) Compute(key K, fn func(current V, ok bool) V) V {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	current, ok := obj.underlying[key]
	value := fn(current, ok)
	obj.underlying[key] = value
	return value
}

// BootstrappedManipulation allows a thread safe direct manipulation of the underlying map by wrapping the given
// function in a lock of the underlying mutex
func (obj *NormalMap[K, V]) BootstrappedManipulation(action func(underlying map[K]V)) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	action(obj.underlying)
}
