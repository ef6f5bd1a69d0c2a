// Package device composes named signals and sub-devices into trees.
//
// A Device is a named node. Base supplies the composite behaviour: an
// ordered child registry, recursive name propagation ("{name}-{attr}"
// with trailing underscores trimmed, fully re-propagated on every
// SetName), and a Connect that fans out to all children through the
// connection aggregator so partial failures surface as one structured
// report keyed by attribute.
//
// ReadableDevice adds merged Read/Describe/ReadConfiguration surfaces
// over registered signals plus recursive Stage/Unstage. Collector is the
// top-level orchestrator: it names a set of root devices and connects
// them in parallel under a shared timeout, optionally routing every leaf
// into one simulated store.
package device
