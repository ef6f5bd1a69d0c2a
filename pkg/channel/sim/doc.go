// Package sim provides an in-memory channel backend for tests and
// hardware-free demos.
//
// A Store holds one simulated Channel per pv name, so signals that name
// the same pv share a single backend value. Each Channel supports the
// full channel.Channel surface plus test hooks for driving scenarios:
// SetValue pushes a new reading to every monitor, SetPutProceeds gates
// completion of waiting puts, and SetConnectError / SetConnectDelay shape
// connection behaviour.
//
// Stores can be seeded from YAML profiles, giving demos a declarative way
// to describe their simulated beamline.
package sim
