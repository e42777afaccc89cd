package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCmd_AppliesFlags(t *testing.T) {
	t.Setenv("FLEETD_PORT", "")
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("probe_timeout: 750ms\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", p, "--listen", "127.0.0.1:9000", "--debug"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"listen: 127.0.0.1:9000", "probe_timeout: 750ms", "log_level: debug", "call_timeout: 10s"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestConfigCmd_InvalidListen(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--listen", "nowhere"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() with bad --listen error = nil")
	}
}
