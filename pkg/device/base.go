package device

import (
	"context"
	"strings"
	"sync"

	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
)

// Child is one owned child device with the attribute name it was
// registered under.
type Child struct {
	Attr   string
	Device Device
}

// Base is the composite half of a Device: it owns an ordered set of named
// children, propagates naming to them, and fans Connect out over all of
// them through the connection aggregator.
//
// Embed Base in a device struct, call Init with the outer value, and
// register children with AddChild in constructor order.
type Base struct {
	mu       sync.Mutex
	self     Device
	name     string
	parent   Device
	attrs    []string
	children map[string]Device
}

// Init records the outer device so children see it as their parent.
// It must be called before AddChild or SetName.
func (b *Base) Init(self Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.self = self
}

// AddChild registers child under attr, keeping registration order. If the
// device is already named, the child is named immediately; otherwise it is
// named when SetName runs. Re-registering an attr replaces the child.
func (b *Base) AddChild(attr string, child Device) {
	b.mu.Lock()
	if b.children == nil {
		b.children = make(map[string]Device)
	}
	if _, ok := b.children[attr]; !ok {
		b.attrs = append(b.attrs, attr)
	}
	b.children[attr] = child
	name := b.name
	self := b.self
	b.mu.Unlock()

	if name != "" {
		child.SetName(childName(name, attr))
	}
	child.SetParent(self)
}

// childName composes a child's full name from its parent's name and its
// attribute, trimming trailing underscores used to dodge keyword clashes.
func childName(parent, attr string) string {
	if parent == "" {
		return ""
	}
	return parent + "-" + strings.TrimRight(attr, "_")
}

// Name returns the device's full name, empty until assigned.
func (b *Base) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SetName assigns the name and renames the whole subtree. Every call
// re-propagates fully, so renaming can never leave a child with a stale
// composed name.
func (b *Base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	self := b.self
	children := b.orderedLocked()
	b.mu.Unlock()

	for _, c := range children {
		c.Device.SetName(childName(name, c.Attr))
		c.Device.SetParent(self)
	}
}

// Parent returns the owning device, nil for a root.
func (b *Base) Parent() Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parent
}

// SetParent records the owning device.
func (b *Base) SetParent(parent Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parent = parent
}

// Children returns the owned children in registration order.
func (b *Base) Children() []Child {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orderedLocked()
}

func (b *Base) orderedLocked() []Child {
	out := make([]Child, 0, len(b.attrs))
	for _, attr := range b.attrs {
		out = append(out, Child{Attr: attr, Device: b.children[attr]})
	}
	return out
}

// Connect connects every child concurrently. Failing children are
// reported together in one *connect.NotConnectedError keyed by attribute,
// in registration order; successful children are never reported.
func (b *Base) Connect(ctx context.Context, store *sim.Store) error {
	children := b.Children()

	branches := make([]connect.Branch, 0, len(children))
	for _, c := range children {
		child := c.Device
		branches = append(branches, connect.Branch{
			Name: c.Attr,
			Connect: func(ctx context.Context) error {
				return child.Connect(ctx, store)
			},
		})
	}
	return connect.WaitForConnection(ctx, branches...)
}

// Compile-time interface satisfaction check.
var _ Device = (*Base)(nil)
