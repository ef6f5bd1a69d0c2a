package demo

import (
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/signal"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// SampleStage is a composite demo device: two movers on one stage.
type SampleStage struct {
	device.Base

	X *Mover
	Y *Mover
}

// NewSampleStage creates a stage with movers under "<prefix>X:" and
// "<prefix>Y:".
func NewSampleStage(registry *transport.Registry, prefix string, opts ...signal.Option) *SampleStage {
	s := &SampleStage{
		X: NewMover(registry, prefix+"X:", opts...),
		Y: NewMover(registry, prefix+"Y:", opts...),
	}
	s.Init(s)
	s.AddChild("x", s.X)
	s.AddChild("y", s.Y)
	return s
}
