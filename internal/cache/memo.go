// Package cache memoizes expensive loads for the lifetime of a process.
//
// A Memo keeps two kinds of entries per key: a resolved value, and an in-flight
// load that concurrent callers join instead of starting their own. Only successful
// loads are stored; a failed load is reported to every waiter and forgotten, so the
// next call retries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Memo memoizes values of type V by string key.
type Memo[V any] struct {
	mu       sync.RWMutex
	resolved map[string]V
	inflight singleflight.Group

	// store is optional; nil disables the shared layer
	store Store
}

// NewMemo creates an empty memo. store may be nil.
func NewMemo[V any](store Store) *Memo[V] {
	return &Memo[V]{
		resolved: make(map[string]V),
		store:    store,
	}
}

// Get returns the value for key, running load at most once per key across all
// concurrent callers. The load keeps the values of the starting caller's context
// but not its cancellation, so one caller giving up does not fail the others.
func (m *Memo[V]) Get(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := m.Lookup(key); ok {
		CacheHits.WithLabelValues("memory").Inc()
		log.Debug().Str("key", key).Msg("Cache hit")
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	leader := false
	v, err, shared := m.inflight.Do(key, func() (interface{}, error) {
		leader = true

		// a load for this key may have finished between Lookup and Do
		if v, ok := m.Lookup(key); ok {
			CacheHits.WithLabelValues("memory").Inc()
			return v, nil
		}

		if v, ok := m.fromStore(loadCtx, key); ok {
			CacheHits.WithLabelValues("redis").Inc()
			m.set(key, v)
			return v, nil
		}

		CacheMisses.Inc()
		log.Debug().Str("key", key).Msg("Cache miss")

		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		m.set(key, v)
		m.toStore(loadCtx, key, v)
		return v, nil
	})
	if shared && !leader {
		CoalescedCalls.Inc()
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Lookup returns the resolved value for key without loading.
func (m *Memo[V]) Lookup(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.resolved[key]
	return v, ok
}

// Len returns the number of resolved keys.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resolved)
}

func (m *Memo[V]) set(key string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved[key] = v
}

func (m *Memo[V]) fromStore(ctx context.Context, key string) (V, bool) {
	var v V
	if m.store == nil {
		return v, false
	}

	data, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("Shared cache read failed, loading directly")
		}
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		StoreErrors.WithLabelValues("decode").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable shared cache entry")
		return v, false
	}
	return v, true
}

func (m *Memo[V]) toStore(ctx context.Context, key string, v V) {
	if m.store == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode value for shared cache")
		return
	}

	if err := m.store.Set(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared cache write failed")
	}
}
