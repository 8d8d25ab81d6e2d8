package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore keeps values in a non-expiring go-cache. Records are held as
// encoded JSON so callers never share mutable state with the store.
type memoryStore struct {
	cache *gocache.Cache
	// listMu serializes read-modify-write list appends.
	listMu sync.Mutex
}

// NewMemoryStore returns an in-process Store. Data is lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (m *memoryStore) Get(ctx context.Context, key string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return ErrNotFound
	}
	data, err := memoryBytes(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	m.cache.Set(key, data, gocache.NoExpiration)
	return nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := encode(value)
	if err != nil {
		return false, fmt.Errorf("kv: encode %s: %w", key, err)
	}
	// Add fails only when the key already exists.
	if err := m.cache.Add(key, data, gocache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

func (m *memoryStore) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := m.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		data, err := memoryBytes(items[k].Object)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k, Value: data})
	}
	return entries, nil
}

func (m *memoryStore) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Add is a no-op when the counter exists; IncrementInt64 is atomic.
	_ = m.cache.Add(key, int64(0), gocache.NoExpiration)
	n, err := m.cache.IncrementInt64(key, 1)
	if err != nil {
		return 0, fmt.Errorf("kv: incr %s: %w", key, err)
	}
	return n, nil
}

func (m *memoryStore) AppendList(ctx context.Context, key, item string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.listMu.Lock()
	defer m.listMu.Unlock()

	var list []string
	if v, ok := m.cache.Get(key); ok {
		existing, isList := v.([]string)
		if !isList {
			return fmt.Errorf("kv: %s does not hold a list", key)
		}
		list = existing
	}
	next := make([]string, len(list), len(list)+1)
	copy(next, list)
	next = append(next, item)
	m.cache.Set(key, next, gocache.NoExpiration)
	return nil
}

func (m *memoryStore) ReadList(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return []string{}, nil
	}
	list, isList := v.([]string)
	if !isList {
		return nil, fmt.Errorf("kv: %s does not hold a list", key)
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (m *memoryStore) Close() error {
	m.cache.Flush()
	return nil
}

// memoryBytes normalizes the three value shapes the memory store holds
// (encoded records, counters, lists) to JSON.
func memoryBytes(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case int64, []string:
		return json.Marshal(val)
	default:
		return nil, fmt.Errorf("kv: unexpected stored type %T", v)
	}
}
