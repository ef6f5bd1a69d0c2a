package transport

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
)

// Registry errors.
var (
	ErrUnknownScheme = errors.New("unknown transport scheme")
	ErrSchemeTaken   = errors.New("transport scheme already registered")
	ErrMixedSchemes  = errors.New("read and write channels must use the same transport scheme")
)

// Factory creates a channel for a bare pv name and value kind.
type Factory func(pv string, kind channel.Kind) (channel.Channel, error)

// Registry maps transport schemes to channel factories. Channel specs
// look like "sim://MOTOR:Setpoint"; a spec without a scheme uses the
// registry's default. Each registry is independent, so tests and
// libraries can compose their own transports without global state.
type Registry struct {
	mu            sync.Mutex
	factories     map[string]Factory
	defaultScheme string
}

// NewRegistry creates a registry whose unprefixed specs resolve through
// defaultScheme. The scheme itself still has to be registered.
func NewRegistry(defaultScheme string) *Registry {
	return &Registry{
		factories:     make(map[string]Factory),
		defaultScheme: defaultScheme,
	}
}

// NewSimRegistry creates a registry whose only transport is the given
// simulated store, registered as "sim" and used as the default scheme.
func NewSimRegistry(store *sim.Store) *Registry {
	r := NewRegistry("sim")
	_ = r.RegisterSim(store)
	return r
}

// Register adds a factory for scheme. Re-registering a scheme is a
// wiring error and fails.
func (r *Registry) Register(scheme string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[scheme]; ok {
		return fmt.Errorf("%w: %q", ErrSchemeTaken, scheme)
	}
	r.factories[scheme] = factory
	return nil
}

// RegisterSim registers store as the "sim" scheme.
func (r *Registry) RegisterSim(store *sim.Store) error {
	return r.Register("sim", func(pv string, kind channel.Kind) (channel.Channel, error) {
		return store.Channel(pv, kind)
	})
}

// DefaultScheme returns the scheme used for unprefixed specs.
func (r *Registry) DefaultScheme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultScheme
}

// Schemes returns the registered scheme names, sorted.
func (r *Registry) Schemes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Split separates a channel spec into scheme and bare pv. A spec without
// "://" resolves to the default scheme.
func (r *Registry) Split(spec string) (scheme, pv string) {
	if before, after, ok := strings.Cut(spec, "://"); ok {
		return before, after
	}
	return r.DefaultScheme(), spec
}

// Create resolves a channel spec through the registered factory.
func (r *Registry) Create(spec string, kind channel.Kind) (channel.Channel, error) {
	scheme, pv := r.Split(spec)

	r.mu.Lock()
	factory, ok := r.factories[scheme]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q in spec %q", ErrUnknownScheme, scheme, spec)
	}
	return factory(pv, kind)
}

// CreatePair resolves the read and write specs of a read-write signal.
// Both must name the same scheme: a signal cannot straddle transports.
func (r *Registry) CreatePair(readSpec, writeSpec string, kind channel.Kind) (read, write channel.Channel, err error) {
	readScheme, _ := r.Split(readSpec)
	writeScheme, _ := r.Split(writeSpec)
	if readScheme != writeScheme {
		return nil, nil, fmt.Errorf("%w: %q vs %q", ErrMixedSchemes, readSpec, writeSpec)
	}

	read, err = r.Create(readSpec, kind)
	if err != nil {
		return nil, nil, err
	}
	write, err = r.Create(writeSpec, kind)
	if err != nil {
		return nil, nil, err
	}
	return read, write, nil
}
