package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetd/internal/adapter/fake"
	"fleetd/internal/directive"
	"fleetd/internal/discovery"

	"github.com/google/uuid"
)

var query = directive.Query{Protocol: "http", Port: "8080", Path: "/device"}

func newResolver(rt *fake.ContainerRuntime, p *fake.DeviceProber, opts ...discovery.Option) *discovery.Resolver {
	return discovery.New(rt, p, opts...)
}

func TestResolve_SingleMatch(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	target := uuid.New()

	rt.AddContainer("sensor-a", "running")
	b := rt.AddContainer("sensor-b", "running")
	rt.AddContainer("sensor-c", "running")
	p.SetDevice("sensor-a", uuid.New())
	p.SetDevice("sensor-b", target)
	p.SetDevice("sensor-c", uuid.New())

	got, err := newResolver(rt, p).Resolve(ctx, target, query)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != b {
		t.Fatalf("Resolve() = %+v, want %+v", got, b)
	}

	// Short-circuit: sensor-c is never probed.
	probes := p.Calls("DeviceUUID")
	if len(probes) != 2 {
		t.Fatalf("probe count = %d, want 2", len(probes))
	}
	if probes[1].Args[0] != "http://sensor-b:8080/device" {
		t.Fatalf("second probe url = %v", probes[1].Args[0])
	}
	if lists := rt.Calls("List"); len(lists) != 1 || lists[0].Args[0] != true {
		t.Fatalf("List calls = %+v, want one List(all=true)", lists)
	}
}

func TestResolve_NoMatchIsNotFound(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()

	rt.AddContainer("sensor-a", "running")
	rt.AddContainer("sensor-b", "exited")
	p.SetDevice("sensor-a", uuid.New())

	_, err := newResolver(rt, p).Resolve(ctx, uuid.New(), query)
	if !errors.Is(err, discovery.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
	if got := len(p.Calls("DeviceUUID")); got != 2 {
		t.Fatalf("probe count = %d, want every candidate probed", got)
	}
}

func TestResolve_FirstMatchWinsInListOrder(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	target := uuid.New()

	first := rt.AddContainer("dup-1", "running")
	rt.AddContainer("dup-2", "running")
	p.SetDevice("dup-1", target)
	p.SetDevice("dup-2", target)

	for range 5 {
		got, err := newResolver(rt, p).Resolve(ctx, target, query)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != first {
			t.Fatalf("Resolve() = %+v, want first match %+v", got, first)
		}
	}
}

func TestResolve_SkipsUnusableCandidates(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	target := uuid.New()

	broken := rt.AddContainer("broken", "running")
	nameless := rt.AddContainer("nameless", "running")
	rt.SetName(nameless.ID, "")
	rt.AddContainer("silent", "running")
	rt.AddContainer("slow", "running")
	want := rt.AddContainer("good", "running")

	rt.InspectErr = func(_ context.Context, ref string) error {
		if ref == broken.ID {
			return errors.New("inspect exploded")
		}
		return nil
	}
	p.Hang("slow")
	p.SetDevice("good", target)

	r := newResolver(rt, p, discovery.WithProbeTimeout(20*time.Millisecond))
	got, err := r.Resolve(ctx, target, query)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != want {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}
	// broken fails inspect and nameless has nothing to dial; neither is probed.
	if got := len(p.Calls("DeviceUUID")); got != 3 {
		t.Fatalf("probe count = %d, want 3 (silent, slow, good)", got)
	}
}

func TestResolve_FallsBackToAddress(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	target := uuid.New()

	c := rt.AddContainer("anon", "running")
	rt.SetName(c.ID, "")
	rt.SetAddress(c.ID, "172.18.0.7")
	p.SetDevice("172.18.0.7", target)

	got, err := newResolver(rt, p).Resolve(ctx, target, query)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != c.ID {
		t.Fatalf("Resolve() = %+v, want id %s", got, c.ID)
	}
	if url := p.Calls("DeviceUUID")[0].Args[0]; url != "http://172.18.0.7:8080/device" {
		t.Fatalf("probe url = %v", url)
	}
}

func TestResolve_ListFailureIsNotNotFound(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	listErr := errors.New("daemon unavailable")
	rt.ListErr = func(context.Context, bool) error { return listErr }

	_, err := newResolver(rt, p).Resolve(ctx, uuid.New(), query)
	if !errors.Is(err, listErr) {
		t.Fatalf("Resolve() error = %v, want %v", err, listErr)
	}
	if errors.Is(err, discovery.ErrNotFound) {
		t.Fatal("list failure must not be reported as not found")
	}
}

func TestResolve_EmptyQueryNeverProbes(t *testing.T) {
	ctx := t.Context()
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	rt.AddContainer("sensor-a", "running")

	_, err := newResolver(rt, p).Resolve(ctx, uuid.New(), directive.Query{})
	if !errors.Is(err, discovery.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
	if got := len(rt.Calls("")) + len(p.Calls("")); got != 0 {
		t.Fatalf("collaborator calls = %d, want 0", got)
	}
}

func TestResolve_CancelledContextStops(t *testing.T) {
	rt := fake.NewContainerRuntime()
	p := fake.NewDeviceProber()
	rt.AddContainer("sensor-a", "running")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newResolver(rt, p).Resolve(ctx, uuid.New(), query)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve() error = %v, want context.Canceled", err)
	}
}
