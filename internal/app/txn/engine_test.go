package txn

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/errors"
)

// scriptedStore fails the first conflicts attempts with ErrConflict and
// commits afterwards, recording how often apply ran.
type scriptedStore struct {
	conflicts int
	attempts  int
	applies   int
	committed map[string][]byte
}

func (s *scriptedStore) Update(_ context.Context, _ []string, apply storage.ApplyFunc) error {
	s.attempts++
	s.applies++
	next, err := apply(map[string][]byte{})
	if err != nil {
		return err
	}
	if s.attempts <= s.conflicts {
		return storage.ErrConflict
	}
	s.committed = next
	return nil
}

func TestRunCommitsFirstAttempt(t *testing.T) {
	store := &scriptedStore{}
	var states []State
	engine := New(store, Config{Observer: func(s State) { states = append(states, s) }})

	err := engine.Run(context.Background(), "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{"k": []byte("v")}, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(store.committed["k"]) != "v" {
		t.Fatalf("commit missing: %v", store.committed)
	}

	want := []State{StateIdle, StateWatching, StateReading, StateComputing, StateCommitAttempted, StateCommitted}
	if len(states) != len(want) {
		t.Fatalf("states %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state[%d] = %s, want %s", i, states[i], want[i])
		}
	}
}

func TestRunRetriesOnConflict(t *testing.T) {
	store := &scriptedStore{conflicts: 2}
	engine := New(store, Config{MaxAttempts: 5})

	err := engine.Run(context.Background(), "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{"k": []byte("v")}, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.attempts)
	}
}

func TestRunDomainErrorDoesNotRetry(t *testing.T) {
	store := &scriptedStore{conflicts: 99}
	engine := New(store, Config{MaxAttempts: 5})
	domainErr := errors.InsufficientFunds(10, 100)

	var lastState State
	engine.observer = func(s State) { lastState = s }

	err := engine.Run(context.Background(), "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return nil, domainErr
	})
	if !stderrors.Is(err, domainErr) {
		t.Fatalf("expected domain error unchanged, got %v", err)
	}
	if store.applies != 1 {
		t.Fatalf("domain error must not retry, ran %d times", store.applies)
	}
	if lastState != StateAborted {
		t.Fatalf("final state %s, want aborted", lastState)
	}
}

func TestRunExhaustsBudget(t *testing.T) {
	store := &scriptedStore{conflicts: 99}
	engine := New(store, Config{MaxAttempts: 3})

	err := engine.Run(context.Background(), "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{"k": []byte("v")}, nil
	})
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.attempts)
	}
	if store.committed != nil {
		t.Fatal("exhausted transaction must not commit")
	}
}

func TestRunDeadline(t *testing.T) {
	store := &scriptedStore{}
	engine := New(store, Config{Timeout: time.Nanosecond})

	// A nanosecond budget expires before the first attempt.
	err := engine.Run(context.Background(), "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return nil, nil
	})
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if store.applies != 0 {
		t.Fatalf("expired deadline still ran the transition %d times", store.applies)
	}
}

func TestRunCancelPropagates(t *testing.T) {
	store := &scriptedStore{}
	engine := New(store, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Run(ctx, "op", []string{"k"}, func(map[string][]byte) (map[string][]byte, error) {
		return nil, nil
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
