package demo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/status"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

func collectSensor(t *testing.T) (*Sensor, *sim.Store) {
	t.Helper()
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	// Seed the enum channel so mode puts are validated.
	store.Add(sim.NewEnum("DET:Mode", EnergyLow, EnergyHigh))

	s := NewSensor(registry, "DET:")
	c := device.NewCollector(device.WithSimStore(store))
	require.NoError(t, c.Add("det", s))
	require.NoError(t, c.Collect(context.Background()))
	return s, store
}

func TestSensorReadAndConfigure(t *testing.T) {
	ctx := context.Background()
	s, store := collectSensor(t)

	backend, _ := store.Lookup("DET:Value")
	backend.SetValue(0.6)

	readings, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.6, readings["det-value"].Value)

	require.NoError(t, s.Mode.Set(ctx, EnergyHigh).Wait(ctx))
	conf, err := s.ReadConfiguration(ctx)
	require.NoError(t, err)
	assert.Equal(t, EnergyHigh, conf["det-mode"].Value)

	descriptors, err := s.DescribeConfiguration(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{EnergyLow, EnergyHigh}, descriptors["det-mode"].Choices)
}

func TestMoverSetReportsProgress(t *testing.T) {
	ctx := context.Background()
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	m := NewMover(registry, "M:")
	c := device.NewCollector(device.WithSimStore(store))
	require.NoError(t, c.Add("m", m))
	require.NoError(t, c.Collect(ctx))

	setpoint, _ := store.Lookup("M:Setpoint")
	readback, _ := store.Lookup("M:Readback")
	units, _ := store.Lookup("M:Readback.EGU")
	units.SetValue("mm")

	// Hold the put open so the "move" takes time.
	setpoint.SetPutProceeds(false)

	var mu sync.Mutex
	var updates []status.WatchUpdate
	st := m.Set(ctx, 2.0)
	st.Watch(func(u status.WatchUpdate) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	// Drive the readback like a motor approaching the target.
	for _, v := range []float64{0.5, 1.0, 2.0} {
		readback.SetValue(v)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) > 0 && updates[len(updates)-1].Current == 2.0
	}, "progress updates")

	setpoint.SetPutProceeds(true)
	require.NoError(t, st.Wait(ctx))
	assert.Equal(t, status.StateSucceeded, st.State())

	mu.Lock()
	defer mu.Unlock()
	last := updates[len(updates)-1]
	assert.Equal(t, "m", last.Name)
	assert.Equal(t, 2.0, last.Current)
	assert.Equal(t, 2.0, last.Target)
	assert.Equal(t, "mm", last.Unit)

	got, _ := setpoint.GetValue(ctx)
	assert.Equal(t, 2.0, got)
}

func TestMoverStop(t *testing.T) {
	ctx := context.Background()
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	m := NewMover(registry, "M:")
	c := device.NewCollector(device.WithSimStore(store))
	require.NoError(t, c.Add("m", m))
	require.NoError(t, c.Collect(ctx))

	require.NoError(t, m.Stop(ctx).Wait(ctx))
	backend, _ := store.Lookup("M:Stop.PROC")
	got, _ := backend.GetValue(ctx)
	assert.Equal(t, int64(1), got)
}

func TestSampleStageNamesAndConnects(t *testing.T) {
	ctx := context.Background()
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	stage := NewSampleStage(registry, "STAGE:")
	c := device.NewCollector(device.WithSimStore(store))
	require.NoError(t, c.Add("stage", stage))
	require.NoError(t, c.Collect(ctx))

	// The primary readback of each mover carries the mover's own name.
	assert.Equal(t, "stage-x", stage.X.Name())
	assert.Equal(t, "stage-x", stage.X.Readback.Name())
	assert.Equal(t, "stage-y-setpoint", stage.Y.Setpoint.Name())

	readings, err := stage.X.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, readings, "stage-x")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}
