// Package config loads the fleetd daemon configuration.
//
// The file is YAML and every key is optional. It is read from
// $FLEETD_CONFIG when set, otherwise /etc/fleetd/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"fleetd/internal/logging"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort           = 8050
	DefaultCallTimeout    = 10 * time.Second
	DefaultProbeTimeout   = 2 * time.Second
	DefaultStartupTimeout = 30 * time.Second

	defaultPath = "/etc/fleetd/config.yaml"
)

// Config is the daemon configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// DockerHost overrides DOCKER_HOST when set.
	DockerHost string `yaml:"docker_host"`
	// CallTimeout bounds each runtime call and each reconfiguration push.
	CallTimeout time.Duration `yaml:"call_timeout"`
	// ProbeTimeout bounds each device identity probe during discovery.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// StartupTimeout bounds the wait for the Docker daemon at boot.
	StartupTimeout time.Duration `yaml:"startup_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
}

// Default returns the configuration used for absent keys. FLEETD_PORT, when
// set, replaces the default port.
func Default() Config {
	port := DefaultPort
	if v := strings.TrimSpace(os.Getenv("FLEETD_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			port = p
		}
	}
	return Config{
		Listen:         ":" + strconv.Itoa(port),
		CallTimeout:    DefaultCallTimeout,
		ProbeTimeout:   DefaultProbeTimeout,
		StartupTimeout: DefaultStartupTimeout,
		LogLevel:       logging.LevelInfo,
		LogFormat:      logging.FormatText,
	}
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv("FLEETD_CONFIG"); p != "" {
		return p
	}
	return defaultPath
}

// Load reads the config file at path over the defaults. An empty path uses
// Path(). A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can start a daemon.
func (c Config) Validate() error {
	if _, port, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	} else if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("invalid listen port %q", port)
	}
	for name, d := range map[string]time.Duration{
		"call_timeout":    c.CallTimeout,
		"probe_timeout":   c.ProbeTimeout,
		"startup_timeout": c.StartupTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if _, err := logging.New(io.Discard, c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	return nil
}
