package docker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/client"
)

// WaitReady pings the engine until it answers or ctx ends. Connection
// failures are retried with exponential backoff; any other ping error is
// permanent.
func WaitReady(ctx context.Context, cli *client.Client) error {
	log := slog.With("component", "docker")
	waiting := false

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		_, err := cli.Ping(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !client.IsErrConnectionFailed(err) {
			log.Error("Ping failed.", "err", err)
			return backoff.Permanent(fmt.Errorf("connect to docker daemon: %w", err))
		}
		if !waiting {
			waiting = true
			log.Info("Waiting for docker daemon.")
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return err
	}
	if waiting {
		log.Info("Docker daemon reachable.")
	}
	return nil
}
