// Package transport resolves channel specs like "sim://MOTOR:Setpoint"
// to concrete channels through a per-registry scheme table.
//
// A Registry is plain dependency-injected state: construct one, register
// the transports the application needs, and pass it to the signals that
// should resolve through it. Two registries never share factories, so a
// test can route every spec into its own simulated store while the rest
// of the process talks to real backends.
package transport
