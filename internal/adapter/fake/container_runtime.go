package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"fleetd"
	"fleetd/internal/discovery"
	"fleetd/internal/orchestrator"

	"github.com/containerd/errdefs"
)

var (
	_ orchestrator.Runtime = (*ContainerRuntime)(nil)
	_ discovery.Runtime    = (*ContainerRuntime)(nil)
)

type containerState struct {
	ID       string
	Name     string
	Spec     fleetd.ContainerSpec
	Status   string
	Address  string
	Networks []string
}

func (s *containerState) identity() fleetd.Container {
	return fleetd.Container{ID: s.ID, Name: s.Name}
}

// ContainerRuntime is an in-memory implementation of orchestrator.Runtime.
// Containers are listed in creation order.
type ContainerRuntime struct {
	CallRecorder
	mu         sync.Mutex
	seq        int
	order      []string
	containers map[string]*containerState

	CreateErr         func(ctx context.Context, spec fleetd.ContainerSpec) error
	ListErr           func(ctx context.Context, all bool) error
	InspectErr        func(ctx context.Context, ref string) error
	StartErr          func(ctx context.Context, ref string) error
	RestartErr        func(ctx context.Context, ref string) error
	ConnectNetworkErr func(ctx context.Context, ref, network string) error
}

func NewContainerRuntime() *ContainerRuntime {
	return &ContainerRuntime{containers: make(map[string]*containerState)}
}

// AddContainer seeds a container with the given run status. An empty
// status makes Inspect report no state.
func (r *ContainerRuntime) AddContainer(name, status string) fleetd.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs := r.newContainerLocked(fleetd.ContainerSpec{Name: name})
	cs.Status = status
	return cs.identity()
}

// SetStatus overrides a container's run status.
func (r *ContainerRuntime) SetStatus(ref, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cs := r.lookupLocked(ref); cs != nil {
		cs.Status = status
	}
}

// SetAddress sets a container's network address.
func (r *ContainerRuntime) SetAddress(ref, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cs := r.lookupLocked(ref); cs != nil {
		cs.Address = addr
	}
}

// SetName renames a container. An empty name models a container the runtime
// reports without one.
func (r *ContainerRuntime) SetName(ref, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cs := r.lookupLocked(ref); cs != nil {
		cs.Name = name
	}
}

// Remove deletes a container out-of-band, leaving any registry entry stale.
func (r *ContainerRuntime) Remove(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs := r.lookupLocked(ref)
	if cs == nil {
		return
	}
	delete(r.containers, cs.ID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == cs.ID })
}

// Snapshot returns a container's current state without recording a call.
func (r *ContainerRuntime) Snapshot(ref string) (fleetd.ContainerInfo, fleetd.ContainerSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs := r.lookupLocked(ref)
	if cs == nil {
		return fleetd.ContainerInfo{}, fleetd.ContainerSpec{}, false
	}
	return cs.info(), cs.Spec, true
}

func (r *ContainerRuntime) Create(ctx context.Context, spec fleetd.ContainerSpec) (fleetd.Container, error) {
	r.record("Create", spec)
	if r.CreateErr != nil {
		if err := r.CreateErr(ctx, spec); err != nil {
			return fleetd.Container{}, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if spec.Name != "" {
		for _, cs := range r.containers {
			if cs.Name == spec.Name {
				return fleetd.Container{}, fmt.Errorf("container name %q already in use: %w", spec.Name, errdefs.ErrConflict)
			}
		}
	}
	cs := r.newContainerLocked(spec)
	cs.Status = "created"
	return cs.identity(), nil
}

func (r *ContainerRuntime) List(ctx context.Context, all bool) ([]fleetd.ContainerSummary, error) {
	r.record("List", all)
	if r.ListErr != nil {
		if err := r.ListErr(ctx, all); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fleetd.ContainerSummary, 0, len(r.order))
	for _, id := range r.order {
		cs := r.containers[id]
		if !all && cs.Status != "running" {
			continue
		}
		out = append(out, fleetd.ContainerSummary{Container: cs.identity(), State: cs.Status})
	}
	return out, nil
}

func (r *ContainerRuntime) Inspect(ctx context.Context, ref string) (fleetd.ContainerInfo, error) {
	r.record("Inspect", ref)
	if r.InspectErr != nil {
		if err := r.InspectErr(ctx, ref); err != nil {
			return fleetd.ContainerInfo{}, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs := r.lookupLocked(ref)
	if cs == nil {
		return fleetd.ContainerInfo{}, notFound(ref)
	}
	return cs.info(), nil
}

func (r *ContainerRuntime) Start(ctx context.Context, ref string) error {
	r.record("Start", ref)
	if r.StartErr != nil {
		if err := r.StartErr(ctx, ref); err != nil {
			return err
		}
	}
	return r.setRunning(ref)
}

func (r *ContainerRuntime) Restart(ctx context.Context, ref string) error {
	r.record("Restart", ref)
	if r.RestartErr != nil {
		if err := r.RestartErr(ctx, ref); err != nil {
			return err
		}
	}
	return r.setRunning(ref)
}

func (r *ContainerRuntime) ConnectNetwork(ctx context.Context, ref, network string) error {
	r.record("ConnectNetwork", ref, network)
	if r.ConnectNetworkErr != nil {
		if err := r.ConnectNetworkErr(ctx, ref, network); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs := r.lookupLocked(ref)
	if cs == nil {
		return notFound(ref)
	}
	if !slices.Contains(cs.Networks, network) {
		cs.Networks = append(cs.Networks, network)
	}
	return nil
}

func (r *ContainerRuntime) setRunning(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cs := r.lookupLocked(ref)
	if cs == nil {
		return notFound(ref)
	}
	cs.Status = "running"
	return nil
}

func (r *ContainerRuntime) newContainerLocked(spec fleetd.ContainerSpec) *containerState {
	r.seq++
	cs := &containerState{
		ID:   fmt.Sprintf("%064x", r.seq),
		Name: spec.Name,
		Spec: spec,
	}
	if cs.Name == "" {
		cs.Name = fmt.Sprintf("container-%d", r.seq)
	}
	r.containers[cs.ID] = cs
	r.order = append(r.order, cs.ID)
	return cs
}

func (r *ContainerRuntime) lookupLocked(ref string) *containerState {
	if cs, ok := r.containers[ref]; ok {
		return cs
	}
	for _, cs := range r.containers {
		if cs.Name != "" && cs.Name == ref {
			return cs
		}
	}
	return nil
}

func (s *containerState) info() fleetd.ContainerInfo {
	return fleetd.ContainerInfo{
		Container: s.identity(),
		Address:   s.Address,
		Networks:  slices.Clone(s.Networks),
		Status:    s.Status,
	}
}

func notFound(ref string) error {
	return fmt.Errorf("no such container: %s: %w", ref, errdefs.ErrNotFound)
}
