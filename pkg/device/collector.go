package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/log"
)

// DefaultConnectTimeout bounds a Collect call when no timeout option is
// given. It should exceed the slowest expected device connect.
const DefaultConnectTimeout = 10 * time.Second

// Collector names and connects a set of top-level devices as one unit.
// Devices are registered with Add, which assigns their names; Collect then
// connects all of them in parallel under a shared timeout and reports
// aggregate failures as one structured error.
//
// Each Collector is independent state; tests compose their own with their
// own simulated store.
type Collector struct {
	mu      sync.Mutex
	names   []string
	devices map[string]Device

	timeout time.Duration
	store   *sim.Store
	logger  log.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithTimeout sets the shared connect timeout for Collect.
func WithTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) { c.timeout = d }
}

// WithSimStore routes every connect into the given simulated store.
func WithSimStore(store *sim.Store) CollectorOption {
	return func(c *Collector) { c.store = store }
}

// WithLogger sets the logger for connect outcomes.
func WithLogger(logger log.Logger) CollectorOption {
	return func(c *Collector) { c.logger = logger }
}

// NewCollector creates a Collector.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		devices: make(map[string]Device),
		timeout: DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrNoop(c.logger)
	return c
}

// Add names the device and registers it for Collect. Names must be
// unique within one Collector.
func (c *Collector) Add(name string, d Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.devices[name]; ok {
		return fmt.Errorf("collector: device name %q already registered", name)
	}
	c.names = append(c.names, name)
	c.devices[name] = d
	d.SetName(name)
	return nil
}

// Names returns the registered device names in registration order.
func (c *Collector) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Collect connects every registered device in parallel under the shared
// timeout. A failing subset yields one *connect.NotConnectedError keyed
// by device name, in registration order.
func (c *Collector) Collect(ctx context.Context) error {
	c.mu.Lock()
	branches := make([]connect.Branch, 0, len(c.names))
	for _, name := range c.names {
		d := c.devices[name]
		branches = append(branches, connect.Branch{
			Name: name,
			Connect: func(ctx context.Context) error {
				return d.Connect(ctx, c.store)
			},
		})
	}
	timeout := c.timeout
	c.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := connect.WaitForConnection(cctx, branches...)
	event := log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryConnect,
		Message:   "collector connect",
	}
	if err != nil {
		event.Error = &log.ErrorData{Message: err.Error(), Context: "collect"}
	}
	c.logger.Log(event)
	return err
}
