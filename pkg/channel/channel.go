package channel

import (
	"context"
	"time"
)

// Severity is the alarm severity attached to a Reading.
type Severity uint8

const (
	// SeverityNone indicates a healthy reading.
	SeverityNone Severity = 0

	// SeverityMinor indicates the value is outside its warning limits.
	SeverityMinor Severity = 1

	// SeverityMajor indicates the value is outside its alarm limits.
	SeverityMajor Severity = 2

	// SeverityInvalid indicates the value could not be determined.
	SeverityInvalid Severity = 3
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityMinor:
		return "MINOR"
	case SeverityMajor:
		return "MAJOR"
	case SeverityInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Kind is the value type requested from (and reported by) a channel.
type Kind uint8

const (
	// KindString is a text value. Character arrays are reported as strings.
	KindString Kind = 0

	// KindInteger is a signed integer value.
	KindInteger Kind = 1

	// KindNumber is a floating point value.
	KindNumber Kind = 2

	// KindBoolean is a true/false value. Backends that model booleans as
	// two-choice enumerations are reported as KindBoolean.
	KindBoolean Kind = 3

	// KindEnum is a choice from a fixed set of strings.
	KindEnum Kind = 4

	// KindArray is a one-dimensional numeric array.
	KindArray Kind = 5
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Reading is one observed value with its acquisition metadata.
type Reading struct {
	// Value is the observed value.
	Value any

	// Timestamp is when the backend acquired the value.
	Timestamp time.Time

	// Severity is the alarm severity at acquisition time.
	Severity Severity
}

// Descriptor describes the shape and provenance of a channel's value.
type Descriptor struct {
	// Source identifies the backend, like "sim://MOTOR:Velocity".
	Source string

	// Dtype is the value type the channel produces.
	Dtype Kind

	// Shape is the value dimensions; empty for scalars.
	Shape []int

	// Choices lists the valid values for KindEnum channels.
	Choices []string

	// Units is the engineering unit string, if the backend reports one.
	Units string

	// Precision is the display precision for KindNumber, -1 if unset.
	Precision int
}

// ReadingCallback is invoked with the Reading and its value each time a
// monitor delivers an update.
type ReadingCallback func(reading Reading, value any)

// Monitor is the handle a backend monitor subscription returns.
type Monitor interface {
	// Close stops the subscription so no further callbacks are delivered.
	Close()
}

// Channel is one addressable remote value backed by a protocol client.
// Implementations must be safe for concurrent use.
type Channel interface {
	// Source identifies the channel, like "sim://MOTOR:Velocity".
	Source() string

	// Connect establishes the connection, verifying the backend value is
	// compatible with the requested Kind. It returns a *TypeMismatchError
	// if the backend type disagrees, or the backend's connection error.
	Connect(ctx context.Context) error

	// Put writes a value. If wait is true it returns only once the backend
	// reports completion, or ctx expires.
	Put(ctx context.Context, value any, wait bool) error

	// GetDescriptor returns the channel's metadata.
	GetDescriptor(ctx context.Context) (Descriptor, error)

	// GetReading returns the current value with timestamp and severity.
	GetReading(ctx context.Context) (Reading, error)

	// GetValue returns the current value.
	GetValue(ctx context.Context) (any, error)

	// Monitor subscribes callback to value updates. The current value is
	// delivered before Monitor returns. The returned handle must be closed
	// exactly once.
	Monitor(callback ReadingCallback) (Monitor, error)
}
