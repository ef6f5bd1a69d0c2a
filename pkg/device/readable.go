package device

import (
	"context"

	"github.com/sigflow/sigflow-go/pkg/channel"
)

// ReadableDevice extends Base with the bookkeeping a typical hardware
// device needs: a set of primary signals merged into Read/Describe, a set
// of configuration signals merged into ReadConfiguration/
// DescribeConfiguration, and recursive staging that flips all of them to
// cached reads for the duration of a run.
type ReadableDevice struct {
	Base

	primary  ReadableSignal
	readSigs []ReadableSignal
	confSigs []ReadableSignal
}

// SetReadableSignals declares which signals make up the device's readings.
// Signals in read contribute to Read/Describe; signals in config to
// ReadConfiguration/DescribeConfiguration. The optional primary signal is
// a read signal renamed to the device's own name, for devices whose one
// obvious value should not carry an attribute suffix.
func (d *ReadableDevice) SetReadableSignals(primary ReadableSignal, read, config []ReadableSignal) {
	d.primary = primary
	d.readSigs = read
	d.confSigs = config
}

// SetName names the subtree as usual, then renames the primary signal to
// the device name itself.
func (d *ReadableDevice) SetName(name string) {
	d.Base.SetName(name)
	if d.primary != nil {
		d.primary.SetName(name)
	}
}

// Read merges the readings of every primary and read signal.
func (d *ReadableDevice) Read(ctx context.Context) (map[string]channel.Reading, error) {
	return mergeReadings(ctx, d.allReadSignals())
}

// Describe merges the descriptors of every primary and read signal.
func (d *ReadableDevice) Describe(ctx context.Context) (map[string]channel.Descriptor, error) {
	return mergeDescriptors(ctx, d.allReadSignals())
}

// ReadConfiguration merges the readings of every configuration signal.
func (d *ReadableDevice) ReadConfiguration(ctx context.Context) (map[string]channel.Reading, error) {
	return mergeReadings(ctx, d.confSigs)
}

// DescribeConfiguration merges the descriptors of every configuration
// signal.
func (d *ReadableDevice) DescribeConfiguration(ctx context.Context) (map[string]channel.Descriptor, error) {
	return mergeDescriptors(ctx, d.confSigs)
}

// Stage stages every registered signal so subsequent reads are cached.
func (d *ReadableDevice) Stage(ctx context.Context) error {
	for _, s := range d.allSignals() {
		if err := s.Stage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Unstage releases every registered signal's cached read.
func (d *ReadableDevice) Unstage(ctx context.Context) error {
	for _, s := range d.allSignals() {
		if err := s.Unstage(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *ReadableDevice) allReadSignals() []ReadableSignal {
	if d.primary == nil {
		return d.readSigs
	}
	return append([]ReadableSignal{d.primary}, d.readSigs...)
}

func (d *ReadableDevice) allSignals() []ReadableSignal {
	read := d.allReadSignals()
	all := make([]ReadableSignal, 0, len(read)+len(d.confSigs))
	all = append(all, read...)
	return append(all, d.confSigs...)
}

func mergeReadings(ctx context.Context, signals []ReadableSignal) (map[string]channel.Reading, error) {
	out := make(map[string]channel.Reading)
	for _, s := range signals {
		readings, err := s.Read(ctx)
		if err != nil {
			return nil, err
		}
		for name, r := range readings {
			out[name] = r
		}
	}
	return out, nil
}

func mergeDescriptors(ctx context.Context, signals []ReadableSignal) (map[string]channel.Descriptor, error) {
	out := make(map[string]channel.Descriptor)
	for _, s := range signals {
		descriptors, err := s.Describe(ctx)
		if err != nil {
			return nil, err
		}
		for name, d := range descriptors {
			out[name] = d
		}
	}
	return out, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Device       = (*ReadableDevice)(nil)
	_ Readable     = (*ReadableDevice)(nil)
	_ Configurable = (*ReadableDevice)(nil)
	_ Stageable    = (*ReadableDevice)(nil)
)
