package hashmap

import (
	"time"

	"github.com/skybi/session-broker/internal/task"
)

type expiringEntry[T any] struct {
	raw      T
	inserted time.Time
}

func (entry *expiringEntry[T]) expired(lifetime time.Duration) bool {
	return time.Since(entry.inserted) > lifetime
}

// ExpiringMap wraps the standard NormalMap in order to implement value expiration.
// Expired values are never returned; they are physically removed by the cleanup task.
type ExpiringMap[K comparable, V any] struct {
	normal      *NormalMap[K, *expiringEntry[V]]
	lifetime    time.Duration
	cleanupTask *task.RepeatingTask
}

// NewExpiring creates a new expiring map whose values exist for a specific lifetime.
// Expired values will not be removed from memory before ScheduleCleanupTask is called.
func NewExpiring[K comparable, V any](lifetime time.Duration) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		normal:   NewNormal[K, *expiringEntry[V]](),
		lifetime: lifetime,
	}
}

// ScheduleCleanupTask schedules the task that cleans up expired values in a specific interval.
// A call to StopCleanupTask as soon as the map is no longer needed is highly recommended because it would not be
// garbage collected otherwise.
func (obj *ExpiringMap[K, V]) ScheduleCleanupTask(tick time.Duration) {
	if obj.cleanupTask != nil {
		return
	}
	obj.cleanupTask = task.NewRepeating(obj.cleanup, tick)
	obj.cleanupTask.Start()
}

// StopCleanupTask stops the cleanup task
func (obj *ExpiringMap[K, V]) StopCleanupTask() {
	if obj.cleanupTask == nil {
		return
	}
	obj.cleanupTask.Stop(true)
	obj.cleanupTask = nil
}

func (obj *ExpiringMap[K, V]) cleanup() {
	obj.normal.BootstrappedManipulation(func(raw map[K]*expiringEntry[V]) {
		for key, val := range raw {
			if val.expired(obj.lifetime) {
				delete(raw, key)
			}
		}
	})
}

// Size returns the amount of stored key-value pairs, including expired ones that were not cleaned up yet
func (obj *ExpiringMap[K, V]) Size() int {
	return obj.normal.Size()
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually (and is
// not expired) or is the type's zero value
func (obj *ExpiringMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := obj.normal.Lookup(key)
	if !ok || val.expired(obj.lifetime) {
		var zero V
		return zero, false
	}
	return val.raw, true
}

// Unset deletes the value assigned to given key
func (obj *ExpiringMap[K, V]) Unset(key K) {
	obj.normal.Unset(key)
}

// Compute atomically replaces the value assigned to the given key by the result of fn.
// Replacing a present value keeps its original lifetime; an expired value is handed to fn as absent.
func (obj *ExpiringMap[K, V]) Compute(key K, fn func(current V, ok bool) V) V {
	entry := obj.normal.Compute(key, func(current *expiringEntry[V], ok bool) *expiringEntry[V] {
		if !ok || current.expired(obj.lifetime) {
			var zero V
			return &expiringEntry[V]{
				raw:      fn(zero, false),
				inserted: time.Now(),
			}
		}
		return &expiringEntry[V]{
			raw:      fn(current.raw, true),
			inserted: current.inserted,
		}
	})
	return entry.raw
}
