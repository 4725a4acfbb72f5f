// Package progress drives a resumable computation and republishes what it
// produces to registered observers: every intermediate value as a progress
// notification, then exactly one completion carrying the final result.
//
// Faults raised while creating or advancing the computation never escape
// Run. They are logged and turn the completion result into an absent value.
package progress

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// State is the lifecycle of an Iterator. It only moves forward.
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Iterator drives the sequence produced by a Factory and forwards its values
// to observers. An Iterator is good for a single Run.
type Iterator[P, R any] struct {
	factory Factory[P, R]
	logger  *slog.Logger
	name    string

	mu        sync.Mutex
	observers []Observer[P, R]
	state     atomic.Int32
}

// New creates an Iterator for factory. Nothing is invoked until Run.
func New[P, R any](factory Factory[P, R], opts ...Option) *Iterator[P, R] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Iterator[P, R]{
		factory: factory,
		logger:  o.logger,
		name:    o.name,
	}
}

// Subscribe registers an observer. Observers are notified synchronously on
// the goroutine calling Run, in the order they were subscribed.
func (it *Iterator[P, R]) Subscribe(obs Observer[P, R]) {
	if obs == nil {
		return
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.State() != StateNotStarted {
		it.logger.Warn("subscribe after run ignored", "name", it.name)
		return
	}
	it.observers = append(it.observers, obs)
}

// State reports where the iterator is in its lifecycle.
func (it *Iterator[P, R]) State() State {
	return State(it.state.Load())
}

// Run invokes the factory, publishes each produced value as progress and
// finally publishes one completion. It blocks until the sequence is
// exhausted or faults.
//
// Run never returns or re-panics a fault of the computation. The only error
// it returns is ErrAlreadyRun, when called more than once.
func (it *Iterator[P, R]) Run() error {
	it.mu.Lock()
	if !it.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		it.mu.Unlock()
		it.logger.Warn("iterator reused", "name", it.name)
		return ErrAlreadyRun
	}
	observers := slices.Clone(it.observers)
	it.mu.Unlock()

	defer it.state.Store(int32(StateCompleted))

	result := it.drive(observers)
	for _, obs := range observers {
		obs.OnComplete(result)
	}
	return nil
}

// drive pulls the sequence to exhaustion. A fault at any point ends the
// cycle with an absent result; values already published stay published.
func (it *Iterator[P, R]) drive(observers []Observer[P, R]) (result Completion[R]) {
	defer func() {
		if r := recover(); r != nil {
			it.fault(fmt.Errorf("%w: %v", ErrPanic, r))
			result = Completion[R]{}
		}
	}()

	seq, err := it.factory()
	if err != nil {
		it.fault(err)
		return Completion[R]{}
	}
	if seq == nil {
		it.fault(ErrNilSequence)
		return Completion[R]{}
	}
	if s, ok := seq.(Stopper); ok {
		defer s.Stop()
	}

	count := 0
	for {
		value, ok, err := seq.Next()
		if err != nil {
			it.fault(err, "published", count)
			return Completion[R]{}
		}
		if !ok {
			break
		}
		for _, obs := range observers {
			obs.OnProgress(value)
		}
		count++
	}

	final, ok := seq.Result()
	it.logger.Debug("iteration finished", "name", it.name, "published", count, "hasResult", ok)
	return Completion[R]{Value: final, OK: ok}
}

func (it *Iterator[P, R]) fault(err error, attrs ...any) {
	args := append([]any{"name", it.name, "error", err}, attrs...)
	it.logger.Error("iteration failed", args...)
}
