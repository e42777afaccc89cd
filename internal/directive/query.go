package directive

import (
	"net"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
)

// ProtocolHTTP is the only device endpoint protocol fleetd speaks.
const ProtocolHTTP = "http"

// Query describes how to reach a device endpoint inside its container.
// Different device classes expose different endpoints, so it travels with
// each directive.
type Query struct {
	Protocol string
	// Port is a container port, either "8080" or "8080/tcp".
	Port string
	Path string
}

// IsZero reports whether no query was supplied. Discovery always misses for
// a zero query.
func (q Query) IsZero() bool {
	return q.Protocol == "" && q.Port == "" && q.Path == ""
}

func (q Query) Validate() error {
	if q.IsZero() {
		return nil
	}
	switch strings.ToLower(q.Protocol) {
	case "", ProtocolHTTP:
	default:
		return invalid("query.protocol", "unsupported protocol "+strconv.Quote(q.Protocol))
	}
	if _, err := q.PortNumber(); err != nil {
		return err
	}
	if !strings.HasPrefix(q.Path, "/") {
		return invalid("query.path", "must start with '/'")
	}
	return nil
}

// PortNumber parses Port. Only tcp ports are accepted.
func (q Query) PortNumber() (int, error) {
	if strings.TrimSpace(q.Port) == "" {
		return 0, invalid("query.port", "is required")
	}
	proto, raw := nat.SplitProtoPort(strings.TrimSpace(q.Port))
	if proto != "tcp" {
		return 0, invalid("query.port", "device endpoints must use tcp, got "+strconv.Quote(proto))
	}
	port, err := nat.ParsePort(raw)
	if err != nil {
		return 0, invalid("query.port", err.Error())
	}
	if port == 0 {
		return 0, invalid("query.port", "is required")
	}
	return port, nil
}

// URL builds the device endpoint URL on host for path. An empty path uses
// the query path.
func (q Query) URL(host, path string) (string, error) {
	port, err := q.PortNumber()
	if err != nil {
		return "", err
	}
	if path == "" {
		path = q.Path
	}
	return ProtocolHTTP + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + path, nil
}
