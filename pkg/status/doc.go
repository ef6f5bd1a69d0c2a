// Package status provides an observable, cancellable handle over one
// unit of asynchronous work.
//
// A Status is created by Run, which starts the work on its own goroutine.
// Consumers can poll it (Done, State, Err), block on it (Wait), register
// completion callbacks (AddCallback, fired exactly once in registration
// order, even when the work is cancelled), and watch incremental progress
// (Watch). Failures are captured on the Status, never re-raised from the
// completion path, and cancellation is a distinct captured state.
//
// Mutating operations across the library (Signal.Set, Signal.Execute,
// device moves) all return *Status, giving callers one uniform way to
// observe asynchronous completion.
package status
