package signal

import (
	"context"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/log"
	"github.com/sigflow/sigflow-go/pkg/status"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// SignalX is an execute-only signal: triggering it puts a preset value to
// its channel, like a "process" record. It is not readable.
type SignalX struct {
	Signal

	writeSpec string
	kind      channel.Kind
	preset    any

	write     channel.Channel
	resolved  bool
	connected bool
}

// NewX creates an execute signal that puts preset on every Execute.
func NewX(registry *transport.Registry, writeSpec string, kind channel.Kind, preset any, opts ...Option) *SignalX {
	s := &SignalX{
		writeSpec: writeSpec,
		kind:      kind,
		preset:    preset,
		write:     channel.Disconnected{},
	}
	s.init(registry, opts...)
	return s
}

// Source identifies the backing channel.
func (s *SignalX) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.write.Source()
	}
	return s.writeSpec
}

// Connected reports whether Connect has succeeded.
func (s *SignalX) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Connect binds and connects the channel, through the simulated store
// when one is given.
func (s *SignalX) Connect(ctx context.Context, store *sim.Store) error {
	s.mu.Lock()
	if !s.resolved {
		ch, err := s.resolveChannel(s.writeSpec, s.kind, store)
		if err != nil {
			s.mu.Unlock()
			return connect.NewNotConnected(err.Error())
		}
		s.write = ch
		s.resolved = true
	}
	ch := s.write
	s.mu.Unlock()

	if err := s.connectChannel(ctx, ch); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Execute puts the preset value with completion and returns the Status
// observing it.
func (s *SignalX) Execute(ctx context.Context) *status.Status {
	return status.Run(ctx, func(ctx context.Context, _ func(status.WatchUpdate)) error {
		s.mu.Lock()
		write := s.write
		preset := s.preset
		s.mu.Unlock()

		err := s.do(ctx, "execute", write.Source(), func(ctx context.Context) error {
			return write.Put(ctx, preset, true)
		})
		event := log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryPut,
			Signal:    s.Name(),
			Source:    write.Source(),
			Message:   "execute",
			Value:     preset,
		}
		if err != nil {
			event.Error = &log.ErrorData{Message: err.Error()}
		}
		s.logger.Log(event)
		return err
	})
}

// Compile-time interface satisfaction check.
var _ device.Device = (*SignalX)(nil)
