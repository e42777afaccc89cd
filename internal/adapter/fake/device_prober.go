package fake

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"fleetd/internal/discovery"
	"fleetd/internal/orchestrator"

	"github.com/google/uuid"
)

var (
	_ discovery.Prober    = (*DeviceProber)(nil)
	_ orchestrator.Pusher = (*DeviceProber)(nil)
)

// ErrUnreachable is returned for probes to hosts with no registered device.
var ErrUnreachable = errors.New("device unreachable")

// Push is one recorded reconfiguration request.
type Push struct {
	Method  string
	URL     string
	Payload []byte
}

// DeviceProber is an in-memory device fleet keyed by host name or address.
type DeviceProber struct {
	CallRecorder
	mu      sync.Mutex
	devices map[string]uuid.UUID
	hang    map[string]bool
	pushes  []Push

	// PushStatus is the status code devices answer pushes with. Zero means 200.
	PushStatus int

	DeviceUUIDErr func(ctx context.Context, rawURL string) error
	PushErr       func(ctx context.Context, method, rawURL string, payload []byte) error
}

func NewDeviceProber() *DeviceProber {
	return &DeviceProber{
		devices: make(map[string]uuid.UUID),
		hang:    make(map[string]bool),
	}
}

// SetDevice makes host report id when probed.
func (p *DeviceProber) SetDevice(host string, id uuid.UUID) {
	p.mu.Lock()
	p.devices[host] = id
	p.mu.Unlock()
}

// Hang makes probes and pushes to host block until their context ends.
func (p *DeviceProber) Hang(host string) {
	p.mu.Lock()
	p.hang[host] = true
	p.mu.Unlock()
}

// Pushes returns recorded reconfiguration requests.
func (p *DeviceProber) Pushes() []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Push, len(p.pushes))
	copy(out, p.pushes)
	return out
}

func (p *DeviceProber) DeviceUUID(ctx context.Context, rawURL string) (uuid.UUID, error) {
	p.record("DeviceUUID", rawURL)
	if p.DeviceUUIDErr != nil {
		if err := p.DeviceUUIDErr(ctx, rawURL); err != nil {
			return uuid.Nil, err
		}
	}
	host, err := hostOf(rawURL)
	if err != nil {
		return uuid.Nil, err
	}
	if err := p.wait(ctx, host); err != nil {
		return uuid.Nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.devices[host]
	if !ok {
		return uuid.Nil, ErrUnreachable
	}
	return id, nil
}

func (p *DeviceProber) Push(ctx context.Context, method, rawURL string, payload []byte) (int, error) {
	p.record("Push", method, rawURL)
	if p.PushErr != nil {
		if err := p.PushErr(ctx, method, rawURL, payload); err != nil {
			return 0, err
		}
	}
	host, err := hostOf(rawURL)
	if err != nil {
		return 0, err
	}
	if err := p.wait(ctx, host); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.devices[host]; !ok {
		return 0, ErrUnreachable
	}
	p.pushes = append(p.pushes, Push{Method: method, URL: rawURL, Payload: append([]byte(nil), payload...)})
	if p.PushStatus == 0 {
		return 200, nil
	}
	return p.PushStatus, nil
}

func (p *DeviceProber) wait(ctx context.Context, host string) error {
	p.mu.Lock()
	hang := p.hang[host]
	p.mu.Unlock()
	if !hang {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}
