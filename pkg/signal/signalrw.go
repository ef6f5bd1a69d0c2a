package signal

import (
	"context"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/log"
	"github.com/sigflow/sigflow-go/pkg/status"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// SignalRW is a readable and writable signal. Reads go through the read
// channel like SignalR; writes go through the write channel, which may be
// a different pv (setpoint vs readback).
type SignalRW struct {
	SignalR

	writeSpec string
	write     channel.Channel
}

// NewRW creates a read-write signal. readSpec and writeSpec may name the
// same pv; if they differ they must use the same transport scheme.
func NewRW(registry *transport.Registry, readSpec, writeSpec string, kind channel.Kind, opts ...Option) *SignalRW {
	s := &SignalRW{
		writeSpec: writeSpec,
		write:     channel.Disconnected{},
	}
	s.readSpec = readSpec
	s.kind = kind
	s.read = channel.Disconnected{}
	s.init(registry, opts...)
	return s
}

// Connect binds and connects both channels, concurrently when they are
// distinct pvs. Failures are structured for aggregation.
func (s *SignalRW) Connect(ctx context.Context, store *sim.Store) error {
	if err := s.resolveRW(store); err != nil {
		return connect.NewNotConnected(err.Error())
	}
	s.mu.Lock()
	read, write := s.read, s.write
	s.mu.Unlock()

	var err error
	if read.Source() == write.Source() {
		err = s.connectChannel(ctx, read)
	} else {
		_, readPV := s.registry.Split(s.readSpec)
		_, writePV := s.registry.Split(s.writeSpec)
		err = connect.WaitForConnection(ctx,
			connect.Branch{Name: readPV, Connect: func(ctx context.Context) error {
				return s.connectChannel(ctx, read)
			}},
			connect.Branch{Name: writePV, Connect: func(ctx context.Context) error {
				return s.connectChannel(ctx, write)
			}},
		)
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *SignalRW) resolveRW(store *sim.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return nil
	}
	if store != nil {
		_, readPV := s.registry.Split(s.readSpec)
		_, writePV := s.registry.Split(s.writeSpec)
		read, err := store.Channel(readPV, s.kind)
		if err != nil {
			return err
		}
		write, err := store.Channel(writePV, s.kind)
		if err != nil {
			return err
		}
		s.read, s.write = read, write
	} else {
		read, write, err := s.registry.CreatePair(s.readSpec, s.writeSpec, s.kind)
		if err != nil {
			return err
		}
		s.read, s.write = read, write
	}
	s.resolved = true
	return nil
}

// Put writes value through the write channel. With wait it returns only
// once the backend reports completion, bounded by the signal's timeout.
func (s *SignalRW) Put(ctx context.Context, value any, wait bool) error {
	s.mu.Lock()
	write := s.write
	s.mu.Unlock()

	err := s.do(ctx, "put", write.Source(), func(ctx context.Context) error {
		return write.Put(ctx, value, wait)
	})
	event := log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryPut,
		Signal:    s.Name(),
		Source:    write.Source(),
		Message:   "put",
		Value:     value,
	}
	if err != nil {
		event.Error = &log.ErrorData{Message: err.Error()}
	}
	s.logger.Log(event)
	return err
}

// Set writes value with completion and returns the Status observing it.
func (s *SignalRW) Set(ctx context.Context, value any) *status.Status {
	return status.Run(ctx, func(ctx context.Context, _ func(status.WatchUpdate)) error {
		return s.Put(ctx, value, true)
	})
}
