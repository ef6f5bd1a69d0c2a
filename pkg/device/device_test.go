package device_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sigflow/sigflow-go/pkg/channel"
	"github.com/sigflow/sigflow-go/pkg/channel/sim"
	"github.com/sigflow/sigflow-go/pkg/connect"
	"github.com/sigflow/sigflow-go/pkg/device"
	"github.com/sigflow/sigflow-go/pkg/signal"
	"github.com/sigflow/sigflow-go/pkg/transport"
)

// twoSignalDevice is a device with child signals a and b under one prefix.
type twoSignalDevice struct {
	device.Base
	A *signal.SignalR
	B *signal.SignalR
}

func newTwoSignalDevice(registry *transport.Registry, prefix string) *twoSignalDevice {
	d := &twoSignalDevice{
		A: signal.NewR(registry, prefix+"A", channel.KindNumber),
		B: signal.NewR(registry, prefix+"B", channel.KindNumber),
	}
	d.Init(d)
	d.AddChild("a", d.A)
	d.AddChild("b", d.B)
	return d
}

func TestConnectAllSucceed(t *testing.T) {
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)
	d := newTwoSignalDevice(registry, "X:")
	d.SetName("dev")

	if err := d.Connect(context.Background(), store); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !d.A.Connected() || !d.B.Connected() {
		t.Error("leaf signals do not report connected")
	}
}

func TestConnectPartialFailureReportsExactlyFailingBranch(t *testing.T) {
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)
	d := newTwoSignalDevice(registry, "X:")
	d.SetName("dev")

	backend, err := store.Channel("X:B", channel.KindNumber)
	if err != nil {
		t.Fatal(err)
	}
	backend.SetConnectError(errors.New("no such pv"))

	err = d.Connect(context.Background(), store)
	var nc *connect.NotConnectedError
	if !errors.As(err, &nc) {
		t.Fatalf("Connect error %v is not structured", err)
	}
	want := []string{"b: no such pv"}
	if got := nc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %v, want %v", got, want)
	}

	// The surviving signal stays independently usable.
	if !d.A.Connected() {
		t.Error("signal a not connected after sibling failure")
	}
	if _, err := d.A.Read(context.Background()); err != nil {
		t.Errorf("signal a unusable after sibling failure: %v", err)
	}
}

func TestNestedFailureReportIndents(t *testing.T) {
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	inner := newTwoSignalDevice(registry, "S:")
	outer := &struct {
		device.Base
	}{}
	outer.Init(outer)
	outer.AddChild("stage", inner)
	outer.SetName("outer")

	for _, pv := range []string{"S:A", "S:B"} {
		backend, err := store.Channel(pv, channel.KindNumber)
		if err != nil {
			t.Fatal(err)
		}
		backend.SetConnectError(errors.New("refused"))
	}

	err := outer.Connect(context.Background(), store)
	var nc *connect.NotConnectedError
	if !errors.As(err, &nc) {
		t.Fatalf("Connect error %v is not structured", err)
	}
	want := []string{"stage:", "  a: refused", "  b: refused"}
	if got := nc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %v, want %v", got, want)
	}
}

func TestSetNameRepropagatesFully(t *testing.T) {
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)
	_ = store

	d := &struct {
		device.Base
	}{}
	d.Init(d)
	v := signal.NewR(registry, "X:V", channel.KindNumber)
	d.AddChild("v", v)

	d.SetName("foo")
	if got := v.Name(); got != "foo-v" {
		t.Fatalf("child name = %q, want foo-v", got)
	}
	d.SetName("bar")
	if got := v.Name(); got != "bar-v" {
		t.Errorf("child name = %q after rename, want bar-v", got)
	}
	if v.Parent() != device.Device(d) {
		t.Error("child parent not set")
	}
}

func TestTrailingUnderscoreTrimmedFromAttr(t *testing.T) {
	registry := transport.NewSimRegistry(sim.NewStore())

	d := &struct {
		device.Base
	}{}
	d.Init(d)
	stop := signal.NewR(registry, "X:Stop", channel.KindInteger)
	d.AddChild("stop_", stop)

	d.SetName("m")
	if got := stop.Name(); got != "m-stop" {
		t.Errorf("child name = %q, want m-stop", got)
	}
}

func TestAddChildAfterNaming(t *testing.T) {
	registry := transport.NewSimRegistry(sim.NewStore())

	d := &struct {
		device.Base
	}{}
	d.Init(d)
	d.SetName("dev")

	late := signal.NewR(registry, "X:Late", channel.KindNumber)
	d.AddChild("late", late)
	if got := late.Name(); got != "dev-late" {
		t.Errorf("late child name = %q, want dev-late", got)
	}
}

func TestUnnamedDeviceLeavesChildrenUnnamed(t *testing.T) {
	registry := transport.NewSimRegistry(sim.NewStore())
	d := newTwoSignalDevice(registry, "X:")

	d.SetName("")
	if got := d.A.Name(); got != "" {
		t.Errorf("child name = %q, want empty", got)
	}
}

func TestReadableDeviceMergesAndRenamesPrimary(t *testing.T) {
	ctx := context.Background()
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	type readableDev struct {
		device.ReadableDevice
		Primary *signal.SignalR
		Extra   *signal.SignalR
		Conf    *signal.SignalRW
	}
	d := &readableDev{
		Primary: signal.NewR(registry, "R:Value", channel.KindNumber),
		Extra:   signal.NewR(registry, "R:Extra", channel.KindNumber),
		Conf:    signal.NewRW(registry, "R:Mode", "R:Mode", channel.KindString),
	}
	d.Init(d)
	d.AddChild("value", d.Primary)
	d.AddChild("extra", d.Extra)
	d.AddChild("mode", d.Conf)
	d.SetReadableSignals(d.Primary,
		[]device.ReadableSignal{d.Extra},
		[]device.ReadableSignal{d.Conf})

	d.SetName("det")
	if got := d.Primary.Name(); got != "det" {
		t.Fatalf("primary name = %q, want det", got)
	}
	if got := d.Extra.Name(); got != "det-extra" {
		t.Fatalf("extra name = %q, want det-extra", got)
	}

	if err := d.Connect(ctx, store); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	readings, err := d.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, ok := readings["det"]; !ok {
		t.Errorf("Read keys = %v, want det present", keys(readings))
	}
	if _, ok := readings["det-extra"]; !ok {
		t.Errorf("Read keys = %v, want det-extra present", keys(readings))
	}
	if _, ok := readings["det-mode"]; ok {
		t.Error("configuration signal leaked into Read")
	}

	conf, err := d.ReadConfiguration(ctx)
	if err != nil {
		t.Fatalf("ReadConfiguration failed: %v", err)
	}
	if _, ok := conf["det-mode"]; !ok {
		t.Errorf("ReadConfiguration keys = %v, want det-mode present", keys(conf))
	}

	// Stage pins every registered signal's cache; unstage releases them.
	if err := d.Stage(ctx); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	primaryBackend, _ := store.Lookup("R:Value")
	if primaryBackend.MonitorCount() != 1 {
		t.Error("primary signal not staged")
	}
	if err := d.Unstage(ctx); err != nil {
		t.Fatalf("Unstage failed: %v", err)
	}
	if primaryBackend.MonitorCount() != 0 {
		t.Error("primary cache not torn down on unstage")
	}
}

func TestCollector(t *testing.T) {
	store := sim.NewStore()
	registry := transport.NewSimRegistry(store)

	good := newTwoSignalDevice(registry, "G:")
	bad := newTwoSignalDevice(registry, "B:")

	backend, err := store.Channel("B:A", channel.KindNumber)
	if err != nil {
		t.Fatal(err)
	}
	backend.SetConnectError(errors.New("unreachable"))

	c := device.NewCollector(
		device.WithSimStore(store),
		device.WithTimeout(2*time.Second),
	)
	if err := c.Add("good", good); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("bad", bad); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("good", good); err == nil {
		t.Error("duplicate name accepted")
	}

	if got := good.Name(); got != "good" {
		t.Errorf("device name = %q, want good", got)
	}
	if got := good.A.Name(); got != "good-a" {
		t.Errorf("leaf name = %q, want good-a", got)
	}

	err = c.Collect(context.Background())
	var nc *connect.NotConnectedError
	if !errors.As(err, &nc) {
		t.Fatalf("Collect error %v is not structured", err)
	}
	want := []string{"bad:", "  a: unreachable"}
	if got := nc.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %v, want %v", got, want)
	}
	if !good.A.Connected() {
		t.Error("good device not connected")
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
