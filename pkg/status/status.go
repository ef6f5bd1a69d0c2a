package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the lifecycle state of a Status.
type State uint8

const (
	// StatePending indicates the work has not completed.
	StatePending State = 0

	// StateSucceeded indicates the work completed without error.
	StateSucceeded State = 1

	// StateFailed indicates the work completed with an error.
	StateFailed State = 2

	// StateCancelled indicates the work was cancelled before completing.
	StateCancelled State = 3
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// WatchUpdate is one progress report delivered to watchers of a Status.
type WatchUpdate struct {
	// Name of the device or signal performing the work.
	Name string

	// Current is the value now.
	Current any

	// Initial is the value when the work started.
	Initial any

	// Target is the value the work is moving towards.
	Target any

	// Unit is the engineering unit of the values, if known.
	Unit string

	// Precision is the display precision, -1 if unknown.
	Precision int

	// TimeElapsed since the work started.
	TimeElapsed time.Duration
}

// WorkFunc is one unit of asynchronous work. It must honour ctx and may
// report progress through the supplied function at any point before it
// returns.
type WorkFunc func(ctx context.Context, progress func(WatchUpdate)) error

// Status wraps one unit of asynchronous work: it is observable (Done,
// State, Err, Wait), cancellable, and supports completion callbacks and
// progress watchers. It is the uniform return type of mutating operations
// like Signal.Set and Signal.Execute.
type Status struct {
	mu        sync.Mutex
	state     State
	err       error
	callbacks []func(*Status)
	watchers  []func(WatchUpdate)

	done   chan struct{}
	cancel context.CancelFunc
}

// Run starts work on its own goroutine and returns the Status observing
// it. The work's context is derived from ctx and additionally cancelled
// by Status.Cancel.
func Run(ctx context.Context, work WorkFunc) *Status {
	workCtx, cancel := context.WithCancel(ctx)
	s := &Status{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer cancel()
		s.finish(work(workCtx, s.publish))
	}()
	return s
}

// finish records the outcome exactly once and fires the completion
// callbacks in registration order.
func (s *Status) finish(err error) {
	s.mu.Lock()
	s.err = err
	switch {
	case err == nil:
		s.state = StateSucceeded
	case errors.Is(err, context.Canceled):
		s.state = StateCancelled
	default:
		s.state = StateFailed
	}
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	close(s.done)
	for _, cb := range callbacks {
		cb(s)
	}
}

// publish fans a progress update out to the registered watchers.
func (s *Status) publish(u WatchUpdate) {
	s.mu.Lock()
	watchers := make([]func(WatchUpdate), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, w := range watchers {
		w(u)
	}
}

// Done reports whether the work has completed, in any state.
func (s *Status) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Success reports whether the work completed without error.
func (s *Status) Success() bool {
	return s.State() == StateSucceeded
}

// State returns the current lifecycle state.
func (s *Status) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the captured failure without blocking: nil while pending or
// after success, context.Canceled (possibly wrapped) after cancellation,
// the work's error otherwise. Errors are stored, never re-raised from the
// completion path.
func (s *Status) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePending {
		return nil
	}
	return s.err
}

// Wait blocks until the work completes or ctx expires. It returns the
// captured outcome, or ctx's error if ctx expires first.
func (s *Status) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddCallback registers fn to run when the work completes, including on
// cancellation. If the work has already completed, fn runs immediately.
// Each callback runs exactly once, in registration order.
func (s *Status) AddCallback(fn func(*Status)) {
	s.mu.Lock()
	if s.state == StatePending {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn(s)
}

// Watch registers fn to receive progress updates published by the work.
// Updates delivered before Watch is called are not replayed.
func (s *Status) Watch(fn func(WatchUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Cancel requests cancellation of the work. The Status completes once the
// work observes the cancellation and returns; completion callbacks still
// fire.
func (s *Status) Cancel() {
	s.cancel()
}
