// Package dispatch bridges blocking, thread-originated callbacks from
// legacy backend clients into ordered worker goroutines, one per event
// category.
//
// Legacy protocol clients invoke user callbacks from arbitrary internal
// threads that may hold client-specific context incompatible with
// concurrent or reentrant invocation. Wrapping such callbacks with a
// Dispatcher serializes them per category (e.g. "metadata", "monitor",
// "put") while decoupling callback latency from the backend's internal
// event loop: the wrapped proxy only enqueues and returns, it never runs
// the callback on the producer's thread.
//
// Guarantees:
//
//   - Callbacks within one category run in FIFO order on one goroutine.
//   - Categories run fully concurrently with respect to each other.
//   - A panicking callback is logged with its category context and never
//     terminates the worker or drops subsequently queued callbacks.
//   - Stop joins every worker; the dispatcher is single-use after Stop.
//
// Backends with cooperative (goroutine/channel based) clients do not need
// a Dispatcher; it exists solely for thread-callback-based backends.
package dispatch
