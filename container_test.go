package fleetd

import "testing"

func TestContainerInfoRunState(t *testing.T) {
	tests := []struct {
		status string
		want   RunState
	}{
		{"running", RunStateRunning},
		{"Running", RunStateRunning},
		{"exited", RunStateStopped},
		{"created", RunStateStopped},
		{"paused", RunStateStopped},
		{"", RunStateUnknown},
		{"  ", RunStateUnknown},
	}
	for _, tt := range tests {
		got := ContainerInfo{Status: tt.status}.RunState()
		if got != tt.want {
			t.Errorf("RunState(%q) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestContainerInfoHost(t *testing.T) {
	info := ContainerInfo{Container: Container{Name: "/sensor-1"}, Address: "172.18.0.4"}
	if got := info.Host(); got != "sensor-1" {
		t.Fatalf("Host() = %q, want sensor-1", got)
	}
	info.Name = ""
	if got := info.Host(); got != "172.18.0.4" {
		t.Fatalf("Host() = %q, want address fallback", got)
	}
}

func TestContainerRef(t *testing.T) {
	c := Container{ID: "0123456789abcdef", Name: "sensor-1"}
	if c.Ref() != "0123456789abcdef" {
		t.Fatalf("Ref() = %q, want id", c.Ref())
	}
	if c.String() != "sensor-1 (0123456789ab)" {
		t.Fatalf("String() = %q", c.String())
	}
	if (Container{Name: "x"}).Ref() != "x" {
		t.Fatal("Ref() should fall back to name")
	}
}
