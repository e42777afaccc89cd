// Package api is fleetd's inbound HTTP boundary. It decodes directive
// requests, hands them to the orchestrator and maps outcomes to responses.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"fleetd/internal/directive"
	"fleetd/internal/orchestrator"
	"fleetd/internal/registry"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Executor runs directives.
type Executor interface {
	Execute(ctx context.Context, d directive.Directive) orchestrator.Outcome
}

// RegistryView exposes the identity registry read-only.
type RegistryView interface {
	Snapshot() []registry.Entry
}

type Deps struct {
	Executor Executor
	Registry RegistryView
	Logger   *slog.Logger
	Version  string
}

type Server struct {
	exec    Executor
	reg     RegistryView
	log     *slog.Logger
	version string
	handler http.Handler
}

func New(deps Deps) (*Server, error) {
	if deps.Executor == nil {
		return nil, errors.New("api: executor is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("api: registry is required")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		exec:    deps.Executor,
		reg:     deps.Registry,
		log:     log.With("component", "api"),
		version: deps.Version,
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. onListening, if set, is called once the listener is bound.
func (s *Server) ListenAndServe(ctx context.Context, addr string, onListening func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, onListening)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, onListening func(net.Addr)) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("Listening.", "addr", ln.Addr().String())
	if onListening != nil {
		onListening(ln.Addr())
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.log.Info("Stopped.")
	return nil
}
