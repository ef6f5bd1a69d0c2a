package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
)

func TestSplit(t *testing.T) {
	r := NewRegistry("sim")

	scheme, pv := r.Split("sim://X:Readback")
	assert.Equal(t, "sim", scheme)
	assert.Equal(t, "X:Readback", pv)

	scheme, pv = r.Split("X:Readback")
	assert.Equal(t, "sim", scheme, "unprefixed spec uses default scheme")
	assert.Equal(t, "X:Readback", pv)

	scheme, pv = r.Split("pva://DEV:Array")
	assert.Equal(t, "pva", scheme)
	assert.Equal(t, "DEV:Array", pv)
}

func TestCreateThroughSimStore(t *testing.T) {
	store := sim.NewStore()
	r := NewSimRegistry(store)

	c, err := r.Create("sim://X:Readback", channel.KindNumber)
	require.NoError(t, err)
	assert.Equal(t, "sim://X:Readback", c.Source())

	// The registry resolves into the same store-backed channel.
	backend, ok := store.Lookup("X:Readback")
	require.True(t, ok)
	backend.SetValue(4.5)
	got, err := c.GetValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.5, got)
}

func TestCreateUnknownScheme(t *testing.T) {
	r := NewSimRegistry(sim.NewStore())

	_, err := r.Create("pva://DEV:Array", channel.KindArray)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestRegisterDuplicateScheme(t *testing.T) {
	r := NewSimRegistry(sim.NewStore())
	err := r.RegisterSim(sim.NewStore())
	assert.ErrorIs(t, err, ErrSchemeTaken)
}

func TestCreatePairRejectsMixedSchemes(t *testing.T) {
	r := NewSimRegistry(sim.NewStore())
	require.NoError(t, r.Register("pva", func(pv string, kind channel.Kind) (channel.Channel, error) {
		return sim.New(pv, kind), nil
	}))

	_, _, err := r.CreatePair("sim://X:Readback", "pva://X:Setpoint", channel.KindNumber)
	assert.ErrorIs(t, err, ErrMixedSchemes)

	read, write, err := r.CreatePair("sim://X:Readback", "sim://X:Setpoint", channel.KindNumber)
	require.NoError(t, err)
	assert.Equal(t, "sim://X:Readback", read.Source())
	assert.Equal(t, "sim://X:Setpoint", write.Source())
}

func TestSchemes(t *testing.T) {
	r := NewSimRegistry(sim.NewStore())
	require.NoError(t, r.Register("ca", func(pv string, kind channel.Kind) (channel.Channel, error) {
		return channel.Disconnected{}, nil
	}))
	assert.Equal(t, []string{"ca", "sim"}, r.Schemes())
}
