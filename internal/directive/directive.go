// Package directive defines the operator directives fleetd executes against
// device containers and validates them before any registry or runtime work.
//
// Directive is a closed set: Addition, Restart and Reconfigure are the only
// implementations. Callers dispatch on the concrete type.
package directive

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind names a directive variant.
type Kind string

const (
	KindAddition    Kind = "addition"
	KindRestart     Kind = "restart"
	KindReconfigure Kind = "reconfigure"
)

// Directive is a validated-on-demand operator request targeting one device.
type Directive interface {
	Kind() Kind
	Device() uuid.UUID
	Validate() error

	sealed()
}

// Addition creates, connects and starts a new device container.
type Addition struct {
	Image   string
	Args    []string
	Env     map[string]string
	Network string
	UUID    uuid.UUID
	// Name is an optional container name. The runtime assigns one when empty.
	Name string
}

func (Addition) Kind() Kind          { return KindAddition }
func (a Addition) Device() uuid.UUID { return a.UUID }
func (Addition) sealed()             {}

func (a Addition) Validate() error {
	if a.UUID == uuid.Nil {
		return invalid("uuid", "is required")
	}
	if strings.TrimSpace(a.Image) == "" {
		return invalid("image", "is required")
	}
	if strings.TrimSpace(a.Network) == "" {
		return invalid("network", "is required")
	}
	for k := range a.Env {
		if k == "" || strings.Contains(k, "=") {
			return invalid("env", "variable names must be non-empty and must not contain '='")
		}
	}
	return nil
}

// EnvList renders Env as KEY=VALUE pairs in key order.
func (a Addition) EnvList() []string {
	keys := make([]string, 0, len(a.Env))
	for k := range a.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+a.Env[k])
	}
	return out
}

// Restart starts a stopped device container or restarts a running one.
type Restart struct {
	UUID  uuid.UUID
	Query Query
}

func (Restart) Kind() Kind          { return KindRestart }
func (r Restart) Device() uuid.UUID { return r.UUID }
func (Restart) sealed()             {}

func (r Restart) Validate() error {
	if r.UUID == uuid.Nil {
		return invalid("uuid", "is required")
	}
	return r.Query.Validate()
}

// Reconfigure forwards a configuration payload to a running device without
// touching its run state.
type Reconfigure struct {
	UUID   uuid.UUID
	Query  Query
	Method string
	// Path is the device endpoint the payload is pushed to. Empty means
	// Query.Path.
	Path    string
	Payload []byte
}

func (Reconfigure) Kind() Kind          { return KindReconfigure }
func (r Reconfigure) Device() uuid.UUID { return r.UUID }
func (Reconfigure) sealed()             {}

func (r Reconfigure) Validate() error {
	if r.UUID == uuid.Nil {
		return invalid("uuid", "is required")
	}
	if !strings.EqualFold(strings.TrimSpace(r.Method), "PUT") {
		return invalid("method", fmt.Sprintf("only PUT is accepted, got %q", r.Method))
	}
	if r.Path != "" && !strings.HasPrefix(r.Path, "/") {
		return invalid("path", "must start with '/'")
	}
	// The push needs the device port even when the registry already knows
	// the container.
	if r.Query.IsZero() {
		return invalid("query", "is required")
	}
	return r.Query.Validate()
}

// PushPath is the endpoint path used for the reconfiguration request.
func (r Reconfigure) PushPath() string {
	if r.Path != "" {
		return r.Path
	}
	return r.Query.Path
}
