package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager is a Redis-backed cache manager with per-key expiry.
//
// Concurrency: safe for concurrent use; all state lives in Redis.
type Manager struct {
	rdb        redis.UniversalClient
	instance   string
	defaultTTL time.Duration
}

// NewManager constructs a Manager. instance namespaces every key; it may be
// empty, in which case keys are stored as-is. defaultTTL is the cache time
// GetOrCompute applies when callers do not specify one; non-positive values
// fall back to DefaultTTL.
func NewManager(rdb redis.UniversalClient, instance string, defaultTTL time.Duration) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Manager{rdb: rdb, instance: instance, defaultTTL: defaultTTL}
}

func (m *Manager) key(k string) string {
	if m.instance == "" {
		return k
	}
	return m.instance + ":" + k
}

// Set serializes value and stores it under key with the given TTL.
// A non-positive TTL or an absent value makes the call a no-op, not an error.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 || isAbsent(value) {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	data, err := json.Marshal(entry{TTLSeconds: int64(ttl / time.Second), Value: raw})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}

	if err := m.rdb.Set(ctx, m.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get deserializes the value stored under key into dst.
// Returns (false, nil) when the key is missing or expired; a missing key is
// never an error.
func (m *Manager) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := m.rdb.Get(ctx, m.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	if dst != nil {
		if err := json.Unmarshal(e.Value, dst); err != nil {
			return false, fmt.Errorf("%w: %v", ErrCorruptValue, err)
		}
	}
	return true, nil
}

// Exists reports whether key is live. When refresh is true, a live key has its
// expiry extended back to the originally configured duration (sliding
// expiration) without altering the stored value.
func (m *Manager) Exists(ctx context.Context, key string, refresh bool) (bool, error) {
	if !refresh {
		n, err := m.rdb.Exists(ctx, m.key(key)).Result()
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return n > 0, nil
	}

	data, err := m.rdb.Get(ctx, m.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	if e.TTLSeconds > 0 {
		ttl := time.Duration(e.TTLSeconds) * time.Second
		if err := m.rdb.Expire(ctx, m.key(key), ttl).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return true, nil
}

// RefreshExpiry resets the key's expiry to now+ttl. A non-positive TTL or an
// absent key makes the call a no-op; the store tolerates refreshing a
// vanished key.
func (m *Manager) RefreshExpiry(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := m.rdb.Expire(ctx, m.key(key), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (m *Manager) Remove(ctx context.Context, key string) error {
	if err := m.rdb.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RemoveByPrefix deletes every key in this instance's namespace starting with
// prefix.
func (m *Manager) RemoveByPrefix(ctx context.Context, prefix string) error {
	return m.scanDelete(ctx, m.key(prefix)+"*")
}

// Clear deletes every key in this instance's namespace. It deliberately does
// not flush the whole Redis database: the instance prefix is the unit of
// ownership when the store is shared.
func (m *Manager) Clear(ctx context.Context) error {
	return m.scanDelete(ctx, m.key("")+"*")
}

// Ping returns a point-in-time availability check for the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Manager) scanDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := m.rdb.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if len(keys) > 0 {
			if err := m.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GetValue is a typed convenience wrapper around Manager.Get.
func GetValue[T any](ctx context.Context, m *Manager, key string) (T, bool, error) {
	var v T
	ok, err := m.Get(ctx, key, &v)
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return v, true, nil
}

// GetOrCompute invokes compute and writes its non-absent result back under
// key with the manager's default TTL. The compute callback runs on every
// call, hit or miss (refresh-always read-through): the cache here is a
// write-back target, not a way to skip computation.
func GetOrCompute[T any](ctx context.Context, m *Manager, key string, compute func(context.Context) (T, error)) (T, error) {
	return GetOrComputeTTL(ctx, m, key, compute, m.defaultTTL)
}

// GetOrComputeTTL is GetOrCompute with an explicit cache time. A non-positive
// TTL computes without caching.
func GetOrComputeTTL[T any](ctx context.Context, m *Manager, key string, compute func(context.Context) (T, error), ttl time.Duration) (T, error) {
	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if ttl <= 0 {
		return v, nil
	}
	if err := m.Set(ctx, key, v, ttl); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// isAbsent reports whether value is nil, including typed nil pointers, maps,
// and slices, which would otherwise serialize as JSON null.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
