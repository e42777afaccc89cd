package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDeviceUUID(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		status  int
		body    string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "ok", status: 200, body: `{"device_uuid":"` + id.String() + `","extra":1}`, want: id},
		{name: "missing field", status: 200, body: `{"other":"x"}`, wantErr: true},
		{name: "not json", status: 200, body: `hello`, wantErr: true},
		{name: "bad uuid", status: 200, body: `{"device_uuid":"nope"}`, wantErr: true},
		{name: "server error", status: 500, body: `{"device_uuid":"` + id.String() + `"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/device" {
					t.Errorf("request = %s %s, want GET /device", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := New(srv.Client()).DeviceUUID(t.Context(), srv.URL+"/device")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeviceUUID() = %v, want error", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("DeviceUUID() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestDeviceUUID_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if _, err := New(srv.Client()).DeviceUUID(ctx, srv.URL); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("DeviceUUID() error = %v, want deadline exceeded", err)
	}
}

func TestPush_ReturnsStatusVerbatim(t *testing.T) {
	type request struct{ method, contentType, body string }
	got := make(chan request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- request{method: r.Method, contentType: r.Header.Get("Content-Type"), body: string(b)}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	status, err := New(srv.Client()).Push(t.Context(), http.MethodPut, srv.URL+"/config", []byte(`{"interval":5}`))
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if status != http.StatusTeapot {
		t.Fatalf("Push() status = %d, want 418", status)
	}
	req := <-got
	if req.method != http.MethodPut || req.body != `{"interval":5}` || req.contentType != "application/json" {
		t.Fatalf("request = %+v", req)
	}
}

func TestPush_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(nil).Push(t.Context(), http.MethodPut, url, nil); err == nil {
		t.Fatal("Push() to closed server error = nil")
	}
}
