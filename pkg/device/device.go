package device

import (
	"context"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
)

// Device is a named node in a device tree. Composite devices own children
// and fan Connect out to them; leaf devices (signals) bind a backend.
type Device interface {
	// Name returns the device's full name, empty until assigned.
	Name() string

	// SetName assigns the name and recursively renames every owned child
	// as "{name}-{attr}", trailing underscores trimmed from attr. Calling
	// it again fully re-propagates; no child keeps a stale name.
	SetName(name string)

	// Parent returns the owning device, nil for a root.
	Parent() Device

	// SetParent records the owning device. It is called by the parent
	// during name propagation.
	SetParent(parent Device)

	// Connect readies the device for use. A non-nil store substitutes the
	// in-memory simulated backend for every leaf, recursively; the
	// simulated store never observes real traffic. Connect is expected to
	// be called once per device.
	Connect(ctx context.Context, store *sim.Store) error
}

// Readable produces the device's primary readings, keyed by signal name.
type Readable interface {
	Read(ctx context.Context) (map[string]channel.Reading, error)
	Describe(ctx context.Context) (map[string]channel.Descriptor, error)
}

// Configurable produces the device's configuration readings, keyed by
// signal name.
type Configurable interface {
	ReadConfiguration(ctx context.Context) (map[string]channel.Reading, error)
	DescribeConfiguration(ctx context.Context) (map[string]channel.Descriptor, error)
}

// Stageable prepares a device for a run of cached reads and releases it
// afterwards.
type Stageable interface {
	Stage(ctx context.Context) error
	Unstage(ctx context.Context) error
}

// ReadableSignal is the contract a signal must meet to be registered on a
// ReadableDevice.
type ReadableSignal interface {
	Device
	Readable
	Stageable
}
