package fake

import (
	"context"
	"errors"
	"testing"

	"fleetd"

	"github.com/containerd/errdefs"
)

func TestContainerRuntime_Lifecycle(t *testing.T) {
	ctx := t.Context()
	rt := NewContainerRuntime()

	// Create
	c, err := rt.Create(ctx, fleetd.ContainerSpec{Image: "worker:latest", Env: []string{"ROLE=sensor"}})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || c.Name == "" {
		t.Fatalf("Create() = %+v, want runtime-assigned id and name", c)
	}

	// Created, not yet connected.
	info, err := rt.Inspect(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "created" || len(info.Networks) != 0 {
		t.Errorf("expected created and unconnected, got %+v", info)
	}

	// Connect by name
	if err := rt.ConnectNetwork(ctx, c.Name, "fleet-net"); err != nil {
		t.Fatal(err)
	}
	// Start
	if err := rt.Start(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	info, _ = rt.Inspect(ctx, c.ID)
	if info.Status != "running" || len(info.Networks) != 1 || info.Networks[0] != "fleet-net" {
		t.Errorf("expected running on fleet-net, got %+v", info)
	}
}

func TestContainerRuntime_InspectMissingIsNotFound(t *testing.T) {
	rt := NewContainerRuntime()
	_, err := rt.Inspect(t.Context(), "nope")
	if !errdefs.IsNotFound(err) {
		t.Fatalf("Inspect() error = %v, want not found", err)
	}
	if err := rt.Restart(t.Context(), "nope"); !errdefs.IsNotFound(err) {
		t.Fatalf("Restart() error = %v, want not found", err)
	}
}

func TestContainerRuntime_CreateNameConflict(t *testing.T) {
	rt := NewContainerRuntime()
	rt.AddContainer("sensor-1", "running")
	_, err := rt.Create(t.Context(), fleetd.ContainerSpec{Name: "sensor-1", Image: "x"})
	if !errdefs.IsConflict(err) {
		t.Fatalf("Create() error = %v, want conflict", err)
	}
}

func TestContainerRuntime_ListOrderAndFilter(t *testing.T) {
	ctx := t.Context()
	rt := NewContainerRuntime()
	rt.AddContainer("a", "exited")
	rt.AddContainer("b", "running")
	c := rt.AddContainer("c", "running")
	rt.Remove(c.Name)

	all, err := rt.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Name != "a" || all[1].Name != "b" {
		t.Fatalf("List(all) = %+v, want [a b]", all)
	}
	running, _ := rt.List(ctx, false)
	if len(running) != 1 || running[0].Name != "b" {
		t.Fatalf("List(running) = %+v, want [b]", running)
	}
}

func TestContainerRuntime_ErrHooks(t *testing.T) {
	rt := NewContainerRuntime()
	want := errors.New("injected")
	rt.StartErr = func(context.Context, string) error { return want }
	c := rt.AddContainer("a", "exited")

	if err := rt.Start(t.Context(), c.ID); !errors.Is(err, want) {
		t.Fatalf("Start() error = %v, want injected", err)
	}
	info, _, _ := rt.Snapshot(c.ID)
	if info.Status != "exited" {
		t.Fatalf("status = %q, want unchanged", info.Status)
	}
	if len(rt.Calls("Start")) != 1 {
		t.Fatal("failed call was not recorded")
	}
}
