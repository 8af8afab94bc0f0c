// Package memory is an in-memory implementation of the storage capability.
// It is safe for concurrent use and is primarily intended for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tunegrid/service_layer/internal/app/storage"
)

// Store keeps records and sets in maps guarded by a mutex. Every record
// carries a version counter bumped on write, which gives Update real
// optimistic-concurrency semantics: an attempt whose watched versions moved
// between read and commit fails with storage.ErrConflict, exactly like a
// rejected EXEC. Serializing all access through one mutex caps throughput;
// that is acceptable for the store's intended use.
type Store struct {
	mu       sync.Mutex
	records  map[string]record
	sets     map[string]map[string]struct{}
	versions map[string]uint64

	// BeforeCommit, when set, runs after apply and before the version
	// check in Update. Tests use it to interleave a conflicting write.
	BeforeCommit func()
}

type record struct {
	value []byte
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		records:  make(map[string]record),
		sets:     make(map[string]map[string]struct{}),
		versions: make(map[string]uint64),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneBytes(rec.value), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(key, value)
	return nil
}

func (s *Store) setLocked(key string, value []byte) {
	s.records[key] = record{value: cloneBytes(value)}
	s.versions[key]++
}

func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

// Update performs one optimistic attempt: snapshot the watched versions and
// values, run apply outside the lock, then commit only if no watched
// version moved.
func (s *Store) Update(ctx context.Context, keys []string, apply storage.ApplyFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	current := make(map[string][]byte, len(keys))
	watched := make(map[string]uint64, len(keys))
	for _, key := range keys {
		watched[key] = s.versions[key]
		if rec, ok := s.records[key]; ok {
			current[key] = cloneBytes(rec.value)
		}
	}
	s.mu.Unlock()

	next, err := apply(current)
	if err != nil {
		return err
	}

	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range watched {
		if s.versions[key] != version {
			return storage.ErrConflict
		}
	}
	for key, value := range next {
		s.setLocked(key, value)
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
