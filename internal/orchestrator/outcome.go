package orchestrator

import (
	"fleetd"
	"fleetd/internal/directive"

	"github.com/google/uuid"
)

// OutcomeKind discriminates directive results for the inbound boundary.
type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeInvalidInput is a client input error found before any I/O.
	OutcomeInvalidInput
	// OutcomeNotFound means neither the registry nor discovery knew the device.
	OutcomeNotFound
	// OutcomeAmbiguousState means inspect reported no run state, so neither
	// start nor restart was attempted.
	OutcomeAmbiguousState
	// OutcomeRuntimeFault carries a *Fault from the container runtime.
	OutcomeRuntimeFault
	// OutcomeForwardFault means the reconfiguration push failed.
	OutcomeForwardFault
	OutcomeInternal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidInput:
		return "invalid_input"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAmbiguousState:
		return "ambiguous_state"
	case OutcomeRuntimeFault:
		return "runtime_fault"
	case OutcomeForwardFault:
		return "forward_fault"
	default:
		return "internal"
	}
}

// Action names what a successful directive did.
type Action string

const (
	ActionCreated      Action = "created"
	ActionStarted      Action = "started"
	ActionRestarted    Action = "restarted"
	ActionReconfigured Action = "reconfigured"
)

// Outcome is the typed result of one directive.
type Outcome struct {
	Kind      OutcomeKind
	Directive directive.Kind
	Device    uuid.UUID
	Container fleetd.Container
	Action    Action
	// RemoteStatus is the device's status code for a reconfiguration push,
	// reported verbatim.
	RemoteStatus int
	Err          error
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}
