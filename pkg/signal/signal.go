package signal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/log"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// DefaultTimeout bounds each channel operation of a Signal when no
// WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

// Option configures a signal at construction.
type Option func(*Signal)

// WithTimeout sets the per-operation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Signal) { s.timeout = d }
}

// WithName gives a standalone signal a name. Signals owned by a device
// are named by the device tree instead.
func WithName(name string) Option {
	return func(s *Signal) { s.name = name }
}

// WithLogger sets the logger for connect/put/cache events.
func WithLogger(logger log.Logger) Option {
	return func(s *Signal) { s.logger = logger }
}

// Signal is the common state of every signal flavour: a name assigned by
// the owning device tree, a per-operation timeout, and the transport
// registry its channel specs resolve through.
type Signal struct {
	mu      sync.Mutex
	name    string
	parent  device.Device
	timeout time.Duration

	registry *transport.Registry
	logger   log.Logger
}

// init applies defaults and options to the embedded Signal in place;
// Signal guards its state with a mutex and is never copied.
func (s *Signal) init(registry *transport.Registry, opts ...Option) {
	s.registry = registry
	s.timeout = DefaultTimeout
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrNoop(s.logger)
}

// Name returns the signal's full name, empty until assigned.
func (s *Signal) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName assigns the signal's name. Signals are leaves, so there is
// nothing to propagate to.
func (s *Signal) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Parent returns the owning device, nil for a standalone signal.
func (s *Signal) Parent() device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// SetParent records the owning device.
func (s *Signal) SetParent(parent device.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = parent
}

// opCtx derives the context for one channel operation, applying the
// signal's timeout if one is configured.
func (s *Signal) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// do runs one channel operation under the signal's timeout and translates
// an expired per-operation deadline into a *channel.TimeoutError. The
// caller's own cancellation passes through untouched.
func (s *Signal) do(ctx context.Context, op, source string, fn func(ctx context.Context) error) error {
	octx, cancel := s.opCtx(ctx)
	defer cancel()

	err := fn(octx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return &channel.TimeoutError{Op: op, Source: source, Timeout: s.timeout}
	}
	return err
}

// connectChannel connects one backend channel, classifying the outcome
// for the connection aggregator: backend failures and per-operation
// timeouts become structured *connect.NotConnectedError leaves, while the
// caller's own cancellation passes through untouched.
func (s *Signal) connectChannel(ctx context.Context, ch channel.Channel) error {
	err := s.do(ctx, "connect", ch.Source(), ch.Connect)
	if err == nil {
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryConnect,
			Signal:    s.Name(),
			Source:    ch.Source(),
			Message:   "connected",
		})
		return nil
	}
	if isStructured(err) {
		return err
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	return connect.NewNotConnected(err.Error())
}

func isStructured(err error) bool {
	var nc *connect.NotConnectedError
	return errors.As(err, &nc)
}

// resolveChannel binds one channel spec, through the simulated store when
// one is given, through the transport registry otherwise.
func (s *Signal) resolveChannel(spec string, kind channel.Kind, store *sim.Store) (channel.Channel, error) {
	if store != nil {
		_, pv := s.registry.Split(spec)
		return store.Channel(pv, kind)
	}
	return s.registry.Create(spec, kind)
}
