// Package kv is the persistence layer: a string-keyed store of JSON values
// with prefix scans, atomic counters and append-only id lists.
//
// Keys are colon-namespaced, e.g. "claim:CLM-2026-0001" or
// "claims:user:<id>". Values are JSON encoded on write and decoded into the
// caller's destination on read, so every backend stores the same bytes.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Entry is one result of a prefix scan.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Store is the key-value contract shared by all backends. Record writes are
// last-write-wins; SetNX, Incr and AppendList are atomic per key.
type Store interface {
	// Get decodes the value stored at key into dst.
	Get(ctx context.Context, key string, dst interface{}) error
	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value interface{}) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ScanPrefix returns every entry whose key starts with prefix, ordered by key.
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
	// Incr atomically increments the integer at key, starting from zero.
	Incr(ctx context.Context, key string) (int64, error)
	// AppendList atomically appends item to the list at key.
	AppendList(ctx context.Context, key, item string) error
	// ReadList returns the list at key in append order; a missing list is empty.
	ReadList(ctx context.Context, key string) ([]string, error)
	Close() error
}

// Decode unmarshals the values of a scan into a slice of T.
func Decode[T any](entries []Entry) ([]T, error) {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, &DecodeError{Key: e.Key, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeError reports a stored value that does not match the expected shape.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string { return "kv: decode " + e.Key + ": " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Key joins namespace parts with colons.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func encode(value interface{}) ([]byte, error) {
	if raw, ok := value.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(value)
}
