package cache

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Memo memoises a computation per key. Concurrent callers asking for the
// same missing key share a single invocation of the compute function.
type Memo[T any] struct {
	store *LRUCache[T]
	group singleflight.Group
}

// NewMemo wraps an LRU cache.
func NewMemo[T any](store *LRUCache[T]) *Memo[T] {
	return &Memo[T]{store: store}
}

// Store exposes the backing cache, e.g. for registration with a Manager.
func (m *Memo[T]) Store() *LRUCache[T] { return m.store }

// Do returns the cached value for key or computes, stores and returns it.
// The boolean reports whether the value came from the cache or from a shared
// in-flight computation.
func (m *Memo[T]) Do(key string, compute func() (T, error)) (T, bool, error) {
	if v, ok := m.store.Get(key); ok {
		return v, true, nil
	}
	v, err, shared := m.group.Do(key, func() (any, error) {
		if v, ok := m.store.Peek(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.store.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("compute %q: %w", key, err)
	}
	return v.(T), shared, nil
}
