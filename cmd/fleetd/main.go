package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fleetd/config"
	"fleetd/daemon"
	"fleetd/internal/logging"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := logging.Configure(logging.LevelInfo, logging.FormatText); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("Command failed.", "err", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	listen     string
	debug      bool
}

func (f *flags) load() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.listen != "" {
		cfg.Listen = f.listen
	}
	if f.debug {
		cfg.LogLevel = logging.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "fleetd",
		Short:         "Device container directive engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			slog.Info("Starting fleetd.", "version", version, "listen", cfg.Listen)
			return daemon.Run(ctx, cfg, version)
		},
	}

	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "Config file path (default $FLEETD_CONFIG or "+config.Path()+")")
	cmd.PersistentFlags().StringVar(&f.listen, "listen", "", "HTTP listen address, overrides the config file")
	cmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug logging")
	cmd.AddCommand(configCmd(&f))
	return cmd
}

func configCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(configView{
				Listen:         cfg.Listen,
				DockerHost:     cfg.DockerHost,
				CallTimeout:    cfg.CallTimeout.String(),
				ProbeTimeout:   cfg.ProbeTimeout.String(),
				StartupTimeout: cfg.StartupTimeout.String(),
				LogLevel:       cfg.LogLevel,
				LogFormat:      cfg.LogFormat,
			})
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// configView renders durations in the same form the config file accepts.
type configView struct {
	Listen         string `yaml:"listen"`
	DockerHost     string `yaml:"docker_host"`
	CallTimeout    string `yaml:"call_timeout"`
	ProbeTimeout   string `yaml:"probe_timeout"`
	StartupTimeout string `yaml:"startup_timeout"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}
