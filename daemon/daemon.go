// Package daemon wires fleetd's components and runs them until shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"fleetd/api"
	"fleetd/config"
	"fleetd/internal/adapter/docker"
	"fleetd/internal/discovery"
	"fleetd/internal/orchestrator"
	"fleetd/internal/probe"
	"fleetd/internal/registry"
	"fleetd/internal/telemetry"

	systemd "github.com/coreos/go-systemd/v22/daemon"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// Runtime is the container runtime the daemon drives.
type Runtime interface {
	orchestrator.Runtime
	WaitReady(ctx context.Context) error
	Close() error
}

// DeviceClient probes and reconfigures devices.
type DeviceClient interface {
	discovery.Prober
	orchestrator.Pusher
}

// Run connects to Docker, then serves the directive API until ctx is
// cancelled.
func Run(ctx context.Context, cfg config.Config, version string) error {
	rt, err := docker.NewRuntime(cfg.DockerHost)
	if err != nil {
		return err
	}
	return run(ctx, cfg, version, rt, probe.New(nil), nil)
}

// run is Run with injectable collaborators. onListening, if set, observes
// the bound address.
func run(ctx context.Context, cfg config.Config, version string, rt Runtime, dev DeviceClient, onListening func(net.Addr)) error {
	log := slog.With("component", "daemon")
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("Failed to close container runtime.", "err", err)
		}
	}()

	tp := telemetry.NewProvider(slog.Default())
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to shut down tracer provider.", "err", err)
		}
	}()

	log.Info("Waiting for container runtime.", "timeout", cfg.StartupTimeout)
	readyCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	err := rt.WaitReady(readyCtx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("container runtime not ready after %s: %w", cfg.StartupTimeout, err)
		}
		return fmt.Errorf("wait for container runtime: %w", err)
	}

	reg := registry.New()
	resolver := discovery.New(rt, dev,
		discovery.WithProbeTimeout(cfg.ProbeTimeout),
		discovery.WithCallTimeout(cfg.CallTimeout),
	)
	orch := orchestrator.New(rt, reg, resolver, dev,
		orchestrator.WithCallTimeout(cfg.CallTimeout),
		orchestrator.WithTracer(tp.Tracer("fleetd/orchestrator")),
	)
	srv, err := api.New(api.Deps{
		Executor: orch,
		Registry: reg,
		Logger:   slog.Default(),
		Version:  version,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Listen, func(addr net.Addr) {
			if _, err := systemd.SdNotify(false, systemd.SdNotifyReady); err != nil {
				log.Error("Failed to notify systemd that the daemon is ready.", "err", err)
			}
			if onListening != nil {
				onListening(addr)
			}
		})
	})
	g.Go(func() error {
		<-ctx.Done()
		if _, err := systemd.SdNotify(false, systemd.SdNotifyStopping); err != nil {
			log.Debug("Failed to notify systemd that the daemon is stopping.", "err", err)
		}
		return nil
	})
	return g.Wait()
}
