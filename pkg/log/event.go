package log

import (
	"time"
)

// Event is one structured log event emitted by the core.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the emitting session/dispatcher instance (UUID).
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// Device is the owning device name, if any.
	Device string `cbor:"4,keyasint,omitempty"`

	// Signal is the signal name, if the event concerns one signal.
	Signal string `cbor:"5,keyasint,omitempty"`

	// Source is the backend source spec, like "sim://MOTOR:Velocity".
	Source string `cbor:"6,keyasint,omitempty"`

	// Message is a short human-readable description.
	Message string `cbor:"7,keyasint,omitempty"`

	// Value is the observed value, for monitor/put events.
	Value any `cbor:"8,keyasint,omitempty"`

	// Error carries failure details, for CategoryError events.
	Error *ErrorData `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryConnect covers connection attempts and outcomes.
	CategoryConnect Category = 0

	// CategoryMonitor covers monitor subscriptions and updates.
	CategoryMonitor Category = 1

	// CategoryPut covers value writes.
	CategoryPut Category = 2

	// CategoryCache covers signal cache lifecycle (created, torn down).
	CategoryCache Category = 3

	// CategoryDispatch covers dispatch funnel activity, including
	// callback errors isolated on a worker.
	CategoryDispatch Category = 4

	// CategoryError covers errors not tied to a more specific category.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryConnect:
		return "CONNECT"
	case CategoryMonitor:
		return "MONITOR"
	case CategoryPut:
		return "PUT"
	case CategoryCache:
		return "CACHE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrorData captures failure details on an event.
type ErrorData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what was being attempted, e.g. the dispatch
	// category a failing callback ran under.
	Context string `cbor:"2,keyasint,omitempty"`
}
