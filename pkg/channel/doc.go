// Package channel defines the backend channel abstraction.
//
// A Channel is one addressable remote value: something that can be
// connected, read, written and monitored through a protocol client.
// Everything above this package (Signal, Device) is written against the
// Channel interface, so protocol clients plug in underneath without the
// core knowing their transport.
//
// # Data Model
//
// A channel produces Readings: the value plus the timestamp and alarm
// severity at acquisition time. Its Descriptor reports the source spec,
// value Kind, shape, and (for enums) the valid choices.
//
// The requested Kind is fixed when the channel is created. Connect
// verifies the backend value is compatible and fails with a
// *TypeMismatchError otherwise; values are never silently coerced beyond
// the documented conversions (booleans as two-choice enumerations,
// character arrays as strings).
//
// # Errors
//
//   - *TypeMismatchError: backend type disagrees with the requested Kind.
//   - *TimeoutError: one operation exceeded its deadline. Distinct from a
//     connection failure so callers can choose retry versus abort.
//   - ErrDisconnected: operation on the Disconnected placeholder, i.e.
//     before Connect bound a real backend.
package channel
