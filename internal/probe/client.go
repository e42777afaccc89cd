// Package probe talks HTTP to device endpoints inside containers.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes caps how much of a device response is read.
const maxBodyBytes = 64 << 10

// ErrNoDeviceUUID means the device answered without a usable device_uuid.
var ErrNoDeviceUUID = errors.New("response carries no device_uuid")

// Client implements device identity probes and reconfiguration pushes.
// Timeouts come from the request context.
type Client struct {
	httpClient *http.Client
}

// New returns a Client. A nil httpClient uses a traced default client.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{httpClient: httpClient}
}

type deviceInfo struct {
	DeviceUUID string `json:"device_uuid"`
}

// DeviceUUID GETs url and returns the device_uuid field of the JSON body.
func (c *Client) DeviceUUID(ctx context.Context, url string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return uuid.Nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var info deviceInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&info); err != nil {
		return uuid.Nil, fmt.Errorf("decode device info: %w", err)
	}
	if info.DeviceUUID == "" {
		return uuid.Nil, ErrNoDeviceUUID
	}
	id, err := uuid.Parse(info.DeviceUUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrNoDeviceUUID, err)
	}
	return id, nil
}

// Push sends payload to url with method and returns the device's status
// code. Any status is a successful push; only transport failures are errors.
func (c *Client) Push(ctx context.Context, method, url string, payload []byte) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("build push request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	return resp.StatusCode, nil
}
