// Package storage implements the persistent key-value layer behind the
// state manager. A small KV interface hides the concrete backend (memory,
// JSON files, SQLite) and an Adapter on top of it handles per-identity
// namespacing and JSON encoding of the stored collections.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrParse marks corrupt stored JSON. Callers treat a wrapped ErrParse as
// "no prior data" and fall back to defaults; it is never surfaced upward.
var ErrParse = errors.New("corrupt stored value")

// KV is the minimal contract a storage backend has to satisfy.
type KV interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the value; synchronous completion is the only acknowledgment.
	Set(key string, value []byte) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(key string) error
}

// Key builds the namespaced storage key for an identity. With no identity
// the bare logical key is used, which matches the original anonymous scope.
func Key(identity, logicalKey string) string {
	if identity == "" {
		return logicalKey
	}
	return identity + "-" + logicalKey
}

// Adapter reads and writes JSON documents through a KV backend,
// namespacing every key by the owning identity.
type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Read unmarshals the value stored under (identity, logicalKey) into v.
// It reports false when nothing is stored. Corrupt JSON yields an error
// wrapping ErrParse; the caller must treat that as missing data.
func (a *Adapter) Read(identity, logicalKey string, v any) (bool, error) {
	key := Key(identity, logicalKey)
	raw, ok, err := a.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %q: %w: %v", key, ErrParse, err)
	}
	return true, nil
}

// Write marshals v and stores it under (identity, logicalKey).
func (a *Adapter) Write(identity, logicalKey string, v any) error {
	key := Key(identity, logicalKey)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := a.kv.Set(key, raw); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under (identity, logicalKey).
func (a *Adapter) Delete(identity, logicalKey string) error {
	key := Key(identity, logicalKey)
	if err := a.kv.Delete(key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
