package demo

import (
	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/signal"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// Energy mode choices reported by a Sensor.
const (
	EnergyLow  = "Low Energy"
	EnergyHigh = "High Energy"
)

// Sensor is a demo device with a readable value and a configurable energy
// mode, addressed under one pv prefix.
type Sensor struct {
	device.ReadableDevice

	Value *signal.SignalR
	Mode  *signal.SignalRW
}

// NewSensor creates a sensor for pvs "<prefix>Value" and "<prefix>Mode".
func NewSensor(registry *transport.Registry, prefix string, opts ...signal.Option) *Sensor {
	s := &Sensor{
		Value: signal.NewR(registry, prefix+"Value", channel.KindNumber, opts...),
		Mode:  signal.NewRW(registry, prefix+"Mode", prefix+"Mode", channel.KindEnum, opts...),
	}
	s.Init(s)
	s.AddChild("value", s.Value)
	s.AddChild("mode", s.Mode)
	s.SetReadableSignals(nil,
		[]device.ReadableSignal{s.Value},
		[]device.ReadableSignal{s.Mode})
	return s
}
