package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider returns a tracer provider that writes every finished span to
// log at debug level. fleetd has no trace exporter; the log is the sink.
func NewProvider(log *slog.Logger) *sdktrace.TracerProvider {
	if log == nil {
		log = slog.Default()
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logSpanProcessor{log: log}))
}

type logSpanProcessor struct {
	log *slog.Logger
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := []any{
		"span", s.Name(),
		"trace_id", s.SpanContext().TraceID().String(),
		"duration", s.EndTime().Sub(s.StartTime()),
	}
	for _, kv := range s.Attributes() {
		attrs = append(attrs, string(kv.Key), kv.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		attrs = append(attrs, "err", s.Status().Description)
	}
	p.log.Debug("Span finished.", attrs...)
}

func (p *logSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
