package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("FLEETD_PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load() = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Listen != ":8050" {
		t.Fatalf("Listen = %q, want :8050", cfg.Listen)
	}
}

func TestLoad_OverridesOnlyPresentKeys(t *testing.T) {
	t.Setenv("FLEETD_PORT", "")
	p := writeFile(t, "listen: 127.0.0.1:9000\nprobe_timeout: 500ms\nlog_level: debug\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.ProbeTimeout != 500*time.Millisecond {
		t.Errorf("ProbeTimeout = %s", cfg.ProbeTimeout)
	}
	if cfg.CallTimeout != DefaultCallTimeout {
		t.Errorf("CallTimeout = %s, want default", cfg.CallTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestDefault_PortFromEnv(t *testing.T) {
	t.Setenv("FLEETD_PORT", "9100")
	if got := Default().Listen; got != ":9100" {
		t.Fatalf("Listen = %q, want :9100", got)
	}

	t.Setenv("FLEETD_PORT", "not-a-port")
	if got := Default().Listen; got != ":8050" {
		t.Fatalf("Listen with bad FLEETD_PORT = %q, want :8050", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad yaml", content: "listen: [", want: "parse config"},
		{name: "bad duration", content: "call_timeout: soon", want: "parse config"},
		{name: "zero timeout", content: "probe_timeout: 0s", want: "probe_timeout"},
		{name: "bad listen", content: "listen: nowhere", want: "listen"},
		{name: "bad level", content: "log_level: loud", want: "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestPath_Env(t *testing.T) {
	t.Setenv("FLEETD_CONFIG", "/tmp/fleetd.yaml")
	if got := Path(); got != "/tmp/fleetd.yaml" {
		t.Fatalf("Path() = %q", got)
	}
}
