package fleetd

import "strings"

// Container is the runtime-assigned identity of a concrete container.
// fleetd never chooses it; it always comes from a create or list response.
type Container struct {
	ID   string
	Name string
}

// Ref returns the handle to pass to the runtime, preferring the ID.
func (c Container) Ref() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

func (c Container) IsZero() bool {
	return c.ID == "" && c.Name == ""
}

func (c Container) String() string {
	switch {
	case c.Name != "" && c.ID != "":
		return c.Name + " (" + shortID(c.ID) + ")"
	case c.Name != "":
		return c.Name
	default:
		return shortID(c.ID)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// ContainerSpec is what the runtime needs to create a device container.
type ContainerSpec struct {
	// Name is optional; the runtime assigns one when empty.
	Name  string
	Image string
	Cmd   []string
	Env   []string
}

// ContainerSummary is one entry of a runtime container listing.
type ContainerSummary struct {
	Container
	State string
}

// ContainerInfo is the subset of an inspect response fleetd acts on.
type ContainerInfo struct {
	Container
	// Address is the first network address assigned to the container, if any.
	Address string
	// Networks lists the networks the container is attached to.
	Networks []string
	// Status is the runtime run state ("running", "exited", "created", ...).
	// Empty means the runtime reported no state.
	Status string
}

// RunState classifies a runtime status for restart decisions.
type RunState uint8

const (
	RunStateUnknown RunState = iota
	RunStateStopped
	RunStateRunning
)

func (s RunState) String() string {
	switch s {
	case RunStateStopped:
		return "stopped"
	case RunStateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// RunState maps Status: "running" is running, any other non-empty status is
// stopped, and an empty status is unknown.
func (i ContainerInfo) RunState() RunState {
	switch status := strings.TrimSpace(i.Status); {
	case status == "":
		return RunStateUnknown
	case strings.EqualFold(status, "running"):
		return RunStateRunning
	default:
		return RunStateStopped
	}
}

// Host returns the name devices are reachable under on the container
// network, falling back to the network address.
func (i ContainerInfo) Host() string {
	if name := strings.TrimPrefix(i.Name, "/"); name != "" {
		return name
	}
	return i.Address
}
