package demo

import (
	"context"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/signal"
	"github.com/sigflow/sigflow-go/pkg/status"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// Mover is a demo motor: a setpoint/readback pair with velocity, unit and
// precision metadata and a stop trigger, addressed under one pv prefix.
type Mover struct {
	device.ReadableDevice

	Setpoint  *signal.SignalRW
	Readback  *signal.SignalR
	Velocity  *signal.SignalRW
	Units     *signal.SignalR
	Precision *signal.SignalR

	stop *signal.SignalX
}

// NewMover creates a mover for pvs "<prefix>Setpoint", "<prefix>Readback"
// and friends.
func NewMover(registry *transport.Registry, prefix string, opts ...signal.Option) *Mover {
	m := &Mover{
		Setpoint:  signal.NewRW(registry, prefix+"Setpoint", prefix+"Setpoint", channel.KindNumber, opts...),
		Readback:  signal.NewR(registry, prefix+"Readback", channel.KindNumber, opts...),
		Velocity:  signal.NewRW(registry, prefix+"Velocity", prefix+"Velocity", channel.KindNumber, opts...),
		Units:     signal.NewR(registry, prefix+"Readback.EGU", channel.KindString, opts...),
		Precision: signal.NewR(registry, prefix+"Readback.PREC", channel.KindInteger, opts...),
		stop:      signal.NewX(registry, prefix+"Stop.PROC", channel.KindInteger, int64(1), opts...),
	}
	m.Init(m)
	m.AddChild("setpoint", m.Setpoint)
	m.AddChild("readback", m.Readback)
	m.AddChild("velocity", m.Velocity)
	m.AddChild("units", m.Units)
	m.AddChild("precision", m.Precision)
	m.AddChild("stop", m.stop)
	m.SetReadableSignals(m.Readback, nil,
		[]device.ReadableSignal{m.Velocity, m.Units})
	return m
}

// Set moves to target and returns the Status observing the move. Watchers
// on the Status receive a progress update for every readback change until
// the backend reports put completion.
func (m *Mover) Set(ctx context.Context, target float64) *status.Status {
	return status.Run(ctx, func(ctx context.Context, progress func(status.WatchUpdate)) error {
		start := time.Now()

		initial, err := m.Readback.GetValue(ctx)
		if err != nil {
			return err
		}
		unitValue, err := m.Units.GetValue(ctx)
		if err != nil {
			return err
		}
		unit, _ := unitValue.(string)
		precision := -1
		if p, err := m.Precision.GetValue(ctx); err == nil {
			if v, ok := p.(int64); ok {
				precision = int(v)
			}
		}

		obsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		values, err := signal.ObserveValue(obsCtx, m.Readback)
		if err != nil {
			return err
		}

		putDone := make(chan error, 1)
		go func() {
			putDone <- m.Setpoint.Put(ctx, target, true)
		}()

		for {
			select {
			case v, ok := <-values:
				if !ok {
					values = nil
					continue
				}
				progress(status.WatchUpdate{
					Name:        m.Name(),
					Current:     v,
					Initial:     initial,
					Target:      target,
					Unit:        unit,
					Precision:   precision,
					TimeElapsed: time.Since(start),
				})
			case err := <-putDone:
				return err
			}
		}
	})
}

// Stop triggers the stop record.
func (m *Mover) Stop(ctx context.Context) *status.Status {
	return m.stop.Execute(ctx)
}
