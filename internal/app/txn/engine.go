// Package txn implements the retrying optimistic-concurrency primitive
// behind wallet transfers.
//
// Each attempt watches a key set, reads the current values, hands them to a
// pure transition function, and commits the result only if none of the
// watched keys changed since the read. A rejected commit discards the
// attempt and starts over; a transition-function error aborts immediately
// with no write and no retry. The loop is bounded both by an attempt count
// and by an elapsed-time ceiling so high contention degrades into a Timeout
// error instead of livelock.
package txn

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/errors"
	"github.com/tunegrid/service_layer/internal/logging"
	"github.com/tunegrid/service_layer/internal/metrics"
)

const (
	defaultMaxAttempts = 8
	defaultTimeout     = 3 * time.Second
)

// TransitionFunc computes the replacement values for the watched keys from
// their current values. It must be pure: no store access, no side effects,
// so it can run any number of times and be unit-tested without a store.
// Returning an error aborts the transaction without a write.
type TransitionFunc = storage.ApplyFunc

// Config tunes the retry loop.
type Config struct {
	// MaxAttempts bounds the number of optimistic attempts. Zero means the
	// default.
	MaxAttempts int

	// Timeout bounds the elapsed time of the whole loop. Zero means the
	// default.
	Timeout time.Duration

	Logger  *logging.Logger
	Metrics *metrics.Metrics

	// Observer, when set, receives every state transition. Intended for
	// tests.
	Observer func(State)
}

// Engine runs transition functions under optimistic concurrency control
// against a conditional store.
type Engine struct {
	store       storage.Conditional
	maxAttempts int
	timeout     time.Duration
	logger      *logging.Logger
	metrics     *metrics.Metrics
	observer    func(State)
}

// New creates an engine over store.
func New(store storage.Conditional, cfg Config) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Engine{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		observer:    cfg.Observer,
	}
}

// Run executes fn under optimistic concurrency over keys. The operation
// name labels logs and metrics.
//
// Errors returned by fn (domain errors such as insufficient funds)
// propagate unchanged and are never retried; only a conditional-commit
// conflict triggers another attempt. When the attempt budget or the
// deadline is exhausted Run fails with a Timeout service error, leaving no
// partial state behind.
func (e *Engine) Run(ctx context.Context, operation string, keys []string, fn TransitionFunc) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.observe(StateIdle)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return e.deadline(operation, attempt-1, err)
		}

		if e.metrics != nil {
			e.metrics.RecordTxnAttempt(operation)
		}
		e.observe(StateWatching)
		e.observe(StateReading)

		err := e.store.Update(ctx, keys, func(current map[string][]byte) (map[string][]byte, error) {
			e.observe(StateComputing)
			next, err := fn(current)
			if err != nil {
				return nil, err
			}
			e.observe(StateCommitAttempted)
			return next, nil
		})

		switch {
		case err == nil:
			e.observe(StateCommitted)
			if attempt > 1 {
				e.logger.WithTrace(ctx).Debug("transaction committed after retries",
					"operation", operation, "attempts", attempt)
			}
			return nil

		case stderrors.Is(err, storage.ErrConflict):
			if e.metrics != nil {
				e.metrics.RecordTxnConflict(operation)
			}
			e.logger.WithTrace(ctx).Debug("commit rejected by concurrent write",
				"operation", operation, "attempt", attempt)
			continue

		case stderrors.Is(err, context.DeadlineExceeded):
			return e.deadline(operation, attempt, err)

		default:
			e.observe(StateAborted)
			return err
		}
	}

	if e.metrics != nil {
		e.metrics.RecordTxnExhausted(operation)
	}
	e.logger.WithTrace(ctx).Warn("retry budget exhausted",
		"operation", operation, "attempts", e.maxAttempts)
	return errors.Timeout(operation, storage.ErrConflict).
		WithDetails("attempts", e.maxAttempts)
}

func (e *Engine) deadline(operation string, attempts int, cause error) error {
	if stderrors.Is(cause, context.Canceled) {
		return cause
	}
	if e.metrics != nil {
		e.metrics.RecordTxnExhausted(operation)
	}
	return errors.Timeout(operation, cause).WithDetails("attempts", attempts)
}

func (e *Engine) observe(s State) {
	if e.observer != nil {
		e.observer(s)
	}
}
