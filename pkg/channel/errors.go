package channel

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Channel errors.
var (
	// ErrDisconnected is returned by the Disconnected placeholder channel,
	// i.e. when a Signal operation runs before Connect has bound a backend.
	ErrDisconnected = errors.New("channel not connected: Connect has not been called")
)

// TypeMismatchError reports that a backend value's runtime type disagrees
// with the Kind requested at construction. It is fatal at connect time and
// never silently coerced.
type TypeMismatchError struct {
	// Source is the channel source spec.
	Source string

	// Requested is the kind the caller asked for.
	Requested Kind

	// Actual is the kind the backend reported.
	Actual Kind
}

// Error returns a human-readable description of the mismatch.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: backend has type %s, requested %s", e.Source, e.Actual, e.Requested)
}

// TimeoutError reports that one channel operation exceeded its deadline.
// It is distinct from a connection failure so callers can choose retry
// versus abort.
type TimeoutError struct {
	// Op is the operation that timed out ("connect", "put", "get", ...).
	Op string

	// Source is the channel source spec.
	Source string

	// Timeout is the deadline that was exceeded, zero if unknown.
	Timeout time.Duration
}

// Error returns a human-readable description of the timeout.
func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s %s timed out after %s", e.Op, e.Source, e.Timeout)
	}
	return fmt.Sprintf("%s %s timed out", e.Op, e.Source)
}

// Unwrap lets errors.Is(err, context.DeadlineExceeded) succeed.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Disconnected is the placeholder bound to a Signal before Connect is
// called. Every operation fails with ErrDisconnected.
type Disconnected struct{}

// Source returns the empty string.
func (Disconnected) Source() string { return "" }

// Connect fails with ErrDisconnected.
func (Disconnected) Connect(context.Context) error { return ErrDisconnected }

// Put fails with ErrDisconnected.
func (Disconnected) Put(context.Context, any, bool) error { return ErrDisconnected }

// GetDescriptor fails with ErrDisconnected.
func (Disconnected) GetDescriptor(context.Context) (Descriptor, error) {
	return Descriptor{}, ErrDisconnected
}

// GetReading fails with ErrDisconnected.
func (Disconnected) GetReading(context.Context) (Reading, error) {
	return Reading{}, ErrDisconnected
}

// GetValue fails with ErrDisconnected.
func (Disconnected) GetValue(context.Context) (any, error) { return nil, ErrDisconnected }

// Monitor fails with ErrDisconnected.
func (Disconnected) Monitor(ReadingCallback) (Monitor, error) { return nil, ErrDisconnected }

// Compile-time interface satisfaction check.
var _ Channel = Disconnected{}
