// Package storage defines the key-value store capability consumed by the
// repositories and the transactional update engine.
//
// The store is the single source of truth for every entity; there is no
// in-memory cache or secondary copy. Implementations are injected by
// constructor - there is no ambient process-wide connection.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has no record.
	ErrNotFound = errors.New("storage: key not found")

	// ErrConflict is returned by Update when a watched key was modified
	// between the read and the conditional commit.
	ErrConflict = errors.New("storage: concurrent modification of watched key")
)

// KV exposes the point read/write primitives used by the repositories.
type KV interface {
	// Get returns the record at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the record at key.
	Set(ctx context.Context, key string, value []byte) error

	// SAdd adds members to the set at key, creating it if absent.
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers returns all members of the set at key. A missing set is
	// empty, not an error.
	SMembers(ctx context.Context, key string) ([]string, error)
}

// ApplyFunc computes replacement values from the current values of the
// watched keys. Keys absent from current have no record. Returning an error
// aborts the attempt with no write; the error passes through Update
// unchanged.
type ApplyFunc func(current map[string][]byte) (next map[string][]byte, err error)

// Conditional exposes a single optimistic read-modify-write attempt.
type Conditional interface {
	// Update watches keys, reads their current values, invokes apply, and
	// writes the returned values only if no watched key changed since the
	// read. A concurrent modification yields ErrConflict; the caller owns
	// any retry policy.
	Update(ctx context.Context, keys []string, apply ApplyFunc) error
}

// Store is the full capability handed to the application.
type Store interface {
	KV
	Conditional
}
