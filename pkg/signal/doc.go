// Package signal provides named values backed by one or two backend
// channels, with both cached and uncached access.
//
// A SignalR reads one channel. Subscribing or staging lazily creates the
// signal's cache: one shared backend monitor serving every local
// consumer, reference counted and torn down exactly once when the signal
// is unstaged and the last subscription is cleared. Uncached reads always
// bypass a live cache and hit the backend.
//
// SignalRW adds a write channel (which may be a different pv than the
// read channel) with Put and a Status-returning Set. SignalX is
// execute-only: it puts a preset value. Every mutating operation returns
// *status.Status as its uniform observable handle.
//
// Channel specs like "sim://MOTOR:Setpoint" resolve through an injected
// transport.Registry; connecting with a simulated store substitutes the
// in-memory backend for every spec instead.
package signal
