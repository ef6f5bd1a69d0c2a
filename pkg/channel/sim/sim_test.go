package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow-go/pkg/channel"
)

func TestZeroValues(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		kind channel.Kind
		want any
	}{
		{channel.KindString, ""},
		{channel.KindInteger, int64(0)},
		{channel.KindNumber, float64(0)},
		{channel.KindBoolean, false},
	}
	for _, tc := range cases {
		c := New("PV", tc.kind)
		got, err := c.GetValue(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "kind %s", tc.kind)
	}

	arr := New("PV", channel.KindArray)
	got, err := arr.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{}, got)

	enum := NewEnum("PV", "Low", "High")
	got, err = enum.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Low", got)
}

func TestPutNormalizesAndNotifies(t *testing.T) {
	ctx := context.Background()
	c := New("X:Setpoint", channel.KindNumber)

	var mu sync.Mutex
	var values []any
	m, err := c.Monitor(func(r channel.Reading, v any) {
		mu.Lock()
		values = append(values, v)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, c.Put(ctx, 5, false))
	require.NoError(t, c.Put(ctx, 2.5, false))

	mu.Lock()
	defer mu.Unlock()
	// Priming value plus two puts, with the int coerced to float64.
	assert.Equal(t, []any{float64(0), float64(5), float64(2.5)}, values)
}

func TestPutRejectsWrongType(t *testing.T) {
	ctx := context.Background()
	c := New("X:Setpoint", channel.KindInteger)

	err := c.Put(ctx, "nope", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot put string")
}

func TestEnumRejectsUnknownChoice(t *testing.T) {
	ctx := context.Background()
	c := NewEnum("Energy", "Low", "High")

	require.NoError(t, c.Put(ctx, "High", false))
	err := c.Put(ctx, "Medium", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Medium" is not one of`)
}

func TestMonitorPrimesBeforeReturn(t *testing.T) {
	c := New("X:Readback", channel.KindNumber)
	c.SetValue(7.5)

	var primed any
	m, err := c.Monitor(func(r channel.Reading, v any) {
		if primed == nil {
			primed = v
		}
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 7.5, primed)
}

func TestMonitorCloseStopsDelivery(t *testing.T) {
	c := New("X:Readback", channel.KindNumber)

	var mu sync.Mutex
	var count int
	m, err := c.Monitor(func(r channel.Reading, v any) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	c.SetValue(1.0)
	m.Close()
	m.Close() // idempotent
	c.SetValue(2.0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count, "priming + one update, nothing after Close")
	assert.Equal(t, 0, c.MonitorCount())
}

func TestPutGate(t *testing.T) {
	c := New("MOTOR:Setpoint", channel.KindNumber)
	c.SetPutProceeds(false)

	done := make(chan error, 1)
	go func() {
		done <- c.Put(context.Background(), 3.0, true)
	}()

	select {
	case err := <-done:
		t.Fatalf("Put completed while gate closed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	// The value is already applied even though the put has not completed.
	got, err := c.GetValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	c.SetPutProceeds(true)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Put did not complete after gate opened")
	}
}

func TestGatedPutReturnsContextError(t *testing.T) {
	c := New("MOTOR:Setpoint", channel.KindNumber)
	c.SetPutProceeds(false)

	// Deadline expiry surfaces as the context's own error; timeout
	// classification is the caller's concern.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Put(ctx, 3.0, true), context.DeadlineExceeded)

	// Cancellation likewise.
	ctx, cancel = context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Put(ctx, 4.0, true)
	}()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Put did not return after cancellation")
	}
}

func TestConnectErrorAndDelay(t *testing.T) {
	c := New("BAD:PV", channel.KindNumber)
	c.SetConnectError(errors.New("no such pv"))
	require.EqualError(t, c.Connect(context.Background()), "no such pv")

	c = New("SLOW:PV", channel.KindNumber)
	c.SetConnectDelay(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Connect(ctx), context.DeadlineExceeded)
}

func TestDescriptor(t *testing.T) {
	ctx := context.Background()

	c := New("X:Readback", channel.KindNumber)
	c.SetUnits("mm")
	c.SetPrecision(3)

	d, err := c.GetDescriptor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sim://X:Readback", d.Source)
	assert.Equal(t, channel.KindNumber, d.Dtype)
	assert.Equal(t, "mm", d.Units)
	assert.Equal(t, 3, d.Precision)
	assert.Nil(t, d.Shape)

	arr := New("WAVE", channel.KindArray)
	require.NoError(t, arr.Put(ctx, []float64{1, 2, 3}, false))
	d, err = arr.GetDescriptor(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, d.Shape)
}

func TestStoreDeduplicatesByPV(t *testing.T) {
	s := NewStore()

	a, err := s.Channel("X:Readback", channel.KindNumber)
	require.NoError(t, err)
	b, err := s.Channel("X:Readback", channel.KindNumber)
	require.NoError(t, err)
	assert.Same(t, a, b)

	a.SetValue(9.0)
	got, err := b.GetValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9.0, got)
}

func TestStoreKindMismatch(t *testing.T) {
	s := NewStore()

	_, err := s.Channel("X:Readback", channel.KindNumber)
	require.NoError(t, err)

	_, err = s.Channel("X:Readback", channel.KindString)
	var tm *channel.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, channel.KindString, tm.Requested)
	assert.Equal(t, channel.KindNumber, tm.Actual)
}

func TestStoresAreIsolated(t *testing.T) {
	s1, s2 := NewStore(), NewStore()

	a, err := s1.Channel("X:Readback", channel.KindNumber)
	require.NoError(t, err)
	b, err := s2.Channel("X:Readback", channel.KindNumber)
	require.NoError(t, err)

	a.SetValue(1.0)
	got, err := b.GetValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(0), got, "stores must not share state")
}

const profileYAML = `
channels:
  - pv: "X:Setpoint"
    kind: number
    value: 5
    units: mm
    precision: 3
  - pv: "Energy"
    kind: enum
    choices: [Low, High]
    value: High
  - pv: "WAVE"
    kind: array
    value: [1, 2.5, 3]
`

func TestProfileApply(t *testing.T) {
	ctx := context.Background()

	p, err := ParseProfile([]byte(profileYAML))
	require.NoError(t, err)
	require.Len(t, p.Channels, 3)

	s := NewStore()
	require.NoError(t, s.Apply(p))

	sp, ok := s.Lookup("X:Setpoint")
	require.True(t, ok)
	got, err := sp.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
	d, err := sp.GetDescriptor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mm", d.Units)
	assert.Equal(t, 3, d.Precision)

	energy, ok := s.Lookup("Energy")
	require.True(t, ok)
	got, err = energy.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "High", got)
	assert.Error(t, energy.Put(ctx, "Medium", false))

	wave, ok := s.Lookup("WAVE")
	require.True(t, ok)
	got, err = wave.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)
}

func TestLoadProfileFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profileYAML), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Len(t, p.Channels, 3)
}

func TestProfileRejectsBadKind(t *testing.T) {
	_, err := ParseProfile([]byte("channels:\n  - pv: X\n    kind: blob\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown channel kind "blob"`)
}
