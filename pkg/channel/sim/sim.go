package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
)

// Channel is an in-memory simulated channel. It satisfies channel.Channel
// and additionally exposes the sanctioned test hooks: SetValue,
// SetSeverity, SetPutProceeds, SetConnectError and SetConnectDelay.
//
// The simulated store is independent of any real backend and never
// observes real traffic.
type Channel struct {
	pv      string
	kind    channel.Kind
	choices []string

	mu           sync.Mutex
	value        any
	timestamp    time.Time
	severity     channel.Severity
	units        string
	precision    int
	listeners    []*simMonitor
	gate         chan struct{}
	connectErr   error
	connectDelay time.Duration
}

// New creates a simulated channel holding the zero value for kind.
func New(pv string, kind channel.Kind) *Channel {
	return newChannel(pv, kind, nil)
}

// NewEnum creates a simulated enum channel holding the first choice.
func NewEnum(pv string, choices ...string) *Channel {
	return newChannel(pv, channel.KindEnum, choices)
}

func newChannel(pv string, kind channel.Kind, choices []string) *Channel {
	c := &Channel{
		pv:        pv,
		kind:      kind,
		choices:   choices,
		precision: -1,
		gate:      closedGate(),
	}
	c.setValueLocked(zeroValue(kind, choices))
	return c
}

// closedGate returns an already-open put gate.
func closedGate() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// zeroValue returns the initial value for a kind.
func zeroValue(kind channel.Kind, choices []string) any {
	switch kind {
	case channel.KindString:
		return ""
	case channel.KindInteger:
		return int64(0)
	case channel.KindNumber:
		return float64(0)
	case channel.KindBoolean:
		return false
	case channel.KindEnum:
		if len(choices) > 0 {
			return choices[0]
		}
		return ""
	case channel.KindArray:
		return []float64{}
	default:
		return nil
	}
}

// PV returns the bare pv name, without the sim:// scheme.
func (c *Channel) PV() string { return c.pv }

// Kind returns the channel's value kind.
func (c *Channel) Kind() channel.Kind { return c.kind }

// Source identifies the channel, like "sim://MOTOR:Velocity".
func (c *Channel) Source() string { return "sim://" + c.pv }

// Connect honours the configured connect delay and error, and otherwise
// succeeds immediately.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	delay := c.connectDelay
	connectErr := c.connectErr
	c.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return connectErr
}

// Put stores the value. If wait is true it blocks until the put gate is
// open (see SetPutProceeds) or ctx ends, in which case the backend state
// is already updated but ctx's error is returned.
func (c *Channel) Put(ctx context.Context, value any, wait bool) error {
	normalized, err := c.normalize(value)
	if err != nil {
		return err
	}
	c.SetValue(normalized)

	if !wait {
		return nil
	}
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetDescriptor returns the channel metadata.
func (c *Channel) GetDescriptor(ctx context.Context) (channel.Descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := channel.Descriptor{
		Source:    c.Source(),
		Dtype:     c.kind,
		Choices:   c.choices,
		Units:     c.units,
		Precision: c.precision,
	}
	if arr, ok := c.value.([]float64); ok {
		d.Shape = []int{len(arr)}
	}
	return d, nil
}

// GetReading returns the current value with timestamp and severity.
func (c *Channel) GetReading(ctx context.Context) (channel.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readingLocked(), nil
}

// GetValue returns the current value.
func (c *Channel) GetValue(ctx context.Context) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}

// Monitor subscribes callback to updates. The current reading is
// delivered before Monitor returns.
func (c *Channel) Monitor(callback channel.ReadingCallback) (channel.Monitor, error) {
	m := &simMonitor{channel: c, callback: callback}

	c.mu.Lock()
	c.listeners = append(c.listeners, m)
	reading := c.readingLocked()
	c.mu.Unlock()

	callback(reading, reading.Value)
	return m, nil
}

// SetValue sets the simulated value, stamps it with the current time, and
// notifies every monitor.
func (c *Channel) SetValue(value any) {
	c.mu.Lock()
	c.setValueLocked(value)
	reading := c.readingLocked()
	listeners := make([]*simMonitor, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, m := range listeners {
		m.callback(reading, reading.Value)
	}
}

func (c *Channel) setValueLocked(value any) {
	c.value = value
	c.timestamp = time.Now()
}

// SetSeverity sets the alarm severity reported with subsequent readings.
func (c *Channel) SetSeverity(severity channel.Severity) {
	c.mu.Lock()
	c.severity = severity
	c.mu.Unlock()
}

// SetUnits sets the engineering units reported by the descriptor.
func (c *Channel) SetUnits(units string) {
	c.mu.Lock()
	c.units = units
	c.mu.Unlock()
}

// SetPrecision sets the display precision reported by the descriptor.
func (c *Channel) SetPrecision(precision int) {
	c.mu.Lock()
	c.precision = precision
	c.mu.Unlock()
}

// SetPutProceeds opens or closes the put gate. While closed, every
// Put(wait=true) blocks until the gate reopens or its context expires.
func (c *Channel) SetPutProceeds(proceed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	open := isOpen(c.gate)
	if proceed && !open {
		close(c.gate)
	} else if !proceed && open {
		c.gate = make(chan struct{})
	}
}

func isOpen(gate chan struct{}) bool {
	select {
	case <-gate:
		return true
	default:
		return false
	}
}

// SetConnectError makes subsequent Connect calls fail with err.
func (c *Channel) SetConnectError(err error) {
	c.mu.Lock()
	c.connectErr = err
	c.mu.Unlock()
}

// SetConnectDelay makes subsequent Connect calls block for d, honouring
// the caller's context.
func (c *Channel) SetConnectDelay(d time.Duration) {
	c.mu.Lock()
	c.connectDelay = d
	c.mu.Unlock()
}

func (c *Channel) readingLocked() channel.Reading {
	return channel.Reading{
		Value:     c.value,
		Timestamp: c.timestamp,
		Severity:  c.severity,
	}
}

// normalize coerces value to the canonical representation for the
// channel's kind, or fails if the value is incompatible.
func (c *Channel) normalize(value any) (any, error) {
	switch c.kind {
	case channel.KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case channel.KindInteger:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		}
	case channel.KindNumber:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case channel.KindBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case channel.KindEnum:
		s, ok := value.(string)
		if !ok {
			break
		}
		if len(c.choices) == 0 {
			return s, nil
		}
		for _, choice := range c.choices {
			if s == choice {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%s: %q is not one of %v", c.Source(), s, c.choices)
	case channel.KindArray:
		if arr, ok := value.([]float64); ok {
			return arr, nil
		}
	}
	return nil, fmt.Errorf("%s: cannot put %T to a %s channel", c.Source(), value, c.kind)
}

// simMonitor is the handle returned by Monitor.
type simMonitor struct {
	channel  *Channel
	callback channel.ReadingCallback
	once     sync.Once
}

// Close removes the listener so no further callbacks are delivered.
func (m *simMonitor) Close() {
	m.once.Do(func() {
		c := m.channel
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l == m {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	})
}

// MonitorCount reports the number of live monitors; a test hook for
// asserting cache teardown behaviour.
func (c *Channel) MonitorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Compile-time interface satisfaction check.
var _ channel.Channel = (*Channel)(nil)
