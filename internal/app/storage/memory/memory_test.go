package memory

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tunegrid/service_layer/internal/app/storage"
)

func TestGetSetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("got %q", got)
	}

	// Mutating the returned slice must not affect the stored record.
	got[0] = 'X'
	again, _ := s.Get(ctx, "k")
	if !bytes.Equal(again, []byte("v1")) {
		t.Fatalf("stored record aliased by caller: %q", again)
	}
}

func TestSetMembers(t *testing.T) {
	s := New()
	ctx := context.Background()

	members, err := s.SMembers(ctx, "empty")
	if err != nil || len(members) != 0 {
		t.Fatalf("missing set should be empty, got %v %v", members, err)
	}

	if err := s.SAdd(ctx, "ids", "b", "a", "b"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	members, err = s.SMembers(ctx, "ids")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if !reflect.DeepEqual(members, []string{"a", "b"}) {
		t.Fatalf("expected deduplicated sorted members, got %v", members)
	}
}

func TestUpdateCommits(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("old"))

	err := s.Update(ctx, []string{"k"}, func(current map[string][]byte) (map[string][]byte, error) {
		if !bytes.Equal(current["k"], []byte("old")) {
			t.Fatalf("unexpected current value %q", current["k"])
		}
		return map[string][]byte{"k": []byte("new")}, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.Get(ctx, "k")
	if !bytes.Equal(got, []byte("new")) {
		t.Fatalf("commit not applied: %q", got)
	}
}

func TestUpdateConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("old"))

	s.BeforeCommit = func() {
		// A concurrent writer lands between read and commit.
		_ = s.Set(ctx, "k", []byte("interloper"))
	}

	err := s.Update(ctx, []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{"k": []byte("mine")}, nil
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The losing attempt must not have written anything.
	got, _ := s.Get(ctx, "k")
	if !bytes.Equal(got, []byte("interloper")) {
		t.Fatalf("conflicting attempt left state behind: %q", got)
	}
}

func TestUpdateApplyErrorPassesThrough(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("old"))

	sentinel := errors.New("domain says no")
	err := s.Update(ctx, []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	got, _ := s.Get(ctx, "k")
	if !bytes.Equal(got, []byte("old")) {
		t.Fatalf("aborted attempt wrote state: %q", got)
	}
}

func TestUpdateMissingKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Update(ctx, []string{"absent"}, func(current map[string][]byte) (map[string][]byte, error) {
		if _, ok := current["absent"]; ok {
			t.Fatal("absent key should have no entry")
		}
		return map[string][]byte{"absent": []byte("created")}, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, "absent")
	if !bytes.Equal(got, []byte("created")) {
		t.Fatalf("got %q", got)
	}
}
