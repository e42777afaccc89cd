package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"fleetd/internal/directive"
	"fleetd/internal/orchestrator"

	"github.com/google/uuid"
)

// Query is the wire form of directive.Query.
type Query struct {
	Protocol string `json:"protocol,omitempty"`
	Port     Port   `json:"port,omitempty"`
	Path     string `json:"path,omitempty"`
}

func (q *Query) directive() directive.Query {
	if q == nil {
		return directive.Query{}
	}
	return directive.Query{Protocol: q.Protocol, Port: string(q.Port), Path: q.Path}
}

// Port accepts a JSON number (8080) or string ("8080", "8080/tcp").
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Port(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseUint(n.String(), 10, 16); err != nil {
		return directive.Invalid("query.port", "must be an integer port or a port/proto string")
	}
	*p = Port(n.String())
	return nil
}

type AdditionRequest struct {
	UUID    string            `json:"uuid"`
	Image   string            `json:"image"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Network string            `json:"network"`
	Name    string            `json:"name,omitempty"`
}

func (r AdditionRequest) directive() (directive.Addition, error) {
	id, err := parseDevice(r.UUID)
	if err != nil {
		return directive.Addition{}, err
	}
	return directive.Addition{
		UUID:    id,
		Image:   r.Image,
		Args:    r.Args,
		Env:     r.Env,
		Network: r.Network,
		Name:    r.Name,
	}, nil
}

type RestartRequest struct {
	UUID  string `json:"uuid"`
	Query *Query `json:"query,omitempty"`
}

func (r RestartRequest) directive() (directive.Restart, error) {
	id, err := parseDevice(r.UUID)
	if err != nil {
		return directive.Restart{}, err
	}
	return directive.Restart{UUID: id, Query: r.Query.directive()}, nil
}

type ReconfigureRequest struct {
	UUID   string `json:"uuid"`
	Query  *Query `json:"query,omitempty"`
	Method string `json:"method"`
	// Path overrides query.path for the push.
	Path    string          `json:"path,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (r ReconfigureRequest) directive() (directive.Reconfigure, error) {
	id, err := parseDevice(r.UUID)
	if err != nil {
		return directive.Reconfigure{}, err
	}
	return directive.Reconfigure{
		UUID:    id,
		Query:   r.Query.directive(),
		Method:  r.Method,
		Path:    r.Path,
		Payload: r.Payload,
	}, nil
}

// parseDevice parses a device UUID. An empty string yields uuid.Nil so the
// directive's own validation reports the missing field.
func parseDevice(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, directive.Invalid("uuid", "malformed: "+err.Error())
	}
	return id, nil
}

type Container struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Result is the body of a successful directive.
type Result struct {
	Directive    string    `json:"directive"`
	Device       uuid.UUID `json:"device"`
	Container    Container `json:"container"`
	Action       string    `json:"action"`
	RemoteStatus int       `json:"remote_status,omitempty"`
}

func newResult(out orchestrator.Outcome) Result {
	return Result{
		Directive:    string(out.Directive),
		Device:       out.Device,
		Container:    Container{ID: out.Container.ID, Name: out.Container.Name},
		Action:       string(out.Action),
		RemoteStatus: out.RemoteStatus,
	}
}

type RegistryEntry struct {
	Device    uuid.UUID `json:"device"`
	Container Container `json:"container"`
}
