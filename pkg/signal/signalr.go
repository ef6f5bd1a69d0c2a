package signal

import (
	"context"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// SignalR is a readable signal backed by one channel. Reads are served
// from the shared monitor cache while one is live (a subscriber exists or
// the signal is staged) and go to the backend otherwise.
type SignalR struct {
	Signal

	readSpec string
	kind     channel.Kind

	read      channel.Channel
	resolved  bool
	connected bool
	cache     *cache
}

// NewR creates a readable signal for the channel spec, e.g.
// "sim://X:Readback".
func NewR(registry *transport.Registry, readSpec string, kind channel.Kind, opts ...Option) *SignalR {
	s := &SignalR{
		readSpec: readSpec,
		kind:     kind,
		read:     channel.Disconnected{},
	}
	s.init(registry, opts...)
	return s
}

// Source identifies the backing channel.
func (s *SignalR) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.read.Source()
	}
	return s.readSpec
}

// Connected reports whether Connect has succeeded.
func (s *SignalR) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Connect binds and connects the backend channel, through the simulated
// store when one is given. Failures are structured for aggregation.
func (s *SignalR) Connect(ctx context.Context, store *sim.Store) error {
	if err := s.resolve(store); err != nil {
		return connect.NewNotConnected(err.Error())
	}
	s.mu.Lock()
	ch := s.read
	s.mu.Unlock()

	if err := s.connectChannel(ctx, ch); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *SignalR) resolve(store *sim.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return nil
	}
	ch, err := s.resolveChannel(s.readSpec, s.kind, store)
	if err != nil {
		return err
	}
	s.read = ch
	s.resolved = true
	return nil
}

// currentCache returns the live cache, nil if none.
func (s *SignalR) currentCache() *cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

// Describe returns the signal's descriptor keyed by its name.
func (s *SignalR) Describe(ctx context.Context) (map[string]channel.Descriptor, error) {
	var d channel.Descriptor
	err := s.do(ctx, "describe", s.Source(), func(ctx context.Context) error {
		var err error
		d, err = s.readChannel().GetDescriptor(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]channel.Descriptor{s.Name(): d}, nil
}

// Read returns the signal's reading keyed by its name. With a live cache
// it waits for the first monitor update and serves the cached reading;
// otherwise it asks the backend.
func (s *SignalR) Read(ctx context.Context) (map[string]channel.Reading, error) {
	r, err := s.reading(ctx, true)
	if err != nil {
		return nil, err
	}
	return map[string]channel.Reading{s.Name(): r}, nil
}

// ReadUncached always asks the backend, bypassing a live cache.
func (s *SignalR) ReadUncached(ctx context.Context) (map[string]channel.Reading, error) {
	r, err := s.reading(ctx, false)
	if err != nil {
		return nil, err
	}
	return map[string]channel.Reading{s.Name(): r}, nil
}

// GetValue returns the current value, cached while a cache is live.
func (s *SignalR) GetValue(ctx context.Context) (any, error) {
	r, err := s.reading(ctx, true)
	if err != nil {
		return nil, err
	}
	return r.Value, nil
}

// GetValueUncached always asks the backend, bypassing a live cache.
func (s *SignalR) GetValueUncached(ctx context.Context) (any, error) {
	r, err := s.reading(ctx, false)
	if err != nil {
		return nil, err
	}
	return r.Value, nil
}

func (s *SignalR) reading(ctx context.Context, cached bool) (channel.Reading, error) {
	if cached {
		if c := s.currentCache(); c != nil {
			octx, cancel := s.opCtx(ctx)
			defer cancel()
			return c.get(octx)
		}
	}
	var r channel.Reading
	err := s.do(ctx, "read", s.Source(), func(ctx context.Context) error {
		var err error
		r, err = s.readChannel().GetReading(ctx)
		return err
	})
	return r, err
}

func (s *SignalR) readChannel() channel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read
}

// Subscribe registers fn for every cached reading, creating the cache and
// its single backend monitor on first use. If a reading has already
// arrived, fn is invoked immediately. Release the subscription with
// ClearSub.
func (s *SignalR) Subscribe(fn func(name string, reading channel.Reading)) (*Subscription, error) {
	return s.subscribe(&Subscription{fn: fn})
}

// SubscribeValue is Subscribe for listeners that only want the value.
func (s *SignalR) SubscribeValue(fn func(value any)) (*Subscription, error) {
	return s.subscribe(&Subscription{wantValue: true, vfn: fn})
}

func (s *SignalR) subscribe(sub *Subscription) (*Subscription, error) {
	c, err := s.ensureCache()
	if err != nil {
		return nil, err
	}
	c.add(sub)
	return sub, nil
}

// ClearSub removes a subscription. Removing the last one from an
// unstaged signal tears the cache and its monitor down.
func (s *SignalR) ClearSub(sub *Subscription) {
	c := s.currentCache()
	if c == nil || sub == nil {
		return
	}
	c.mu.Lock()
	delete(c.listeners, sub)
	c.mu.Unlock()
	s.release(c)
}

// Stage pins the cache so reads during a run are served from the monitor.
func (s *SignalR) Stage(ctx context.Context) error {
	c, err := s.ensureCache()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.staged = true
	c.mu.Unlock()
	return nil
}

// Unstage unpins the cache; with no listeners left it is torn down.
func (s *SignalR) Unstage(ctx context.Context) error {
	c := s.currentCache()
	if c == nil {
		return nil
	}
	c.mu.Lock()
	c.staged = false
	c.mu.Unlock()
	s.release(c)
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ device.Device         = (*SignalR)(nil)
	_ device.Readable       = (*SignalR)(nil)
	_ device.Stageable      = (*SignalR)(nil)
	_ device.ReadableSignal = (*SignalR)(nil)
)
