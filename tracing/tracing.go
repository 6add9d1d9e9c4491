// Package tracing sets up OpenTelemetry spans and Sentry error reporting.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ncobase/unicourse"

// Config configures span export and error reporting. An empty Endpoint
// keeps spans in-process: trace IDs are still generated but nothing is
// exported. An empty SentryDSN disables Sentry.
type Config struct {
	Endpoint           string        `json:"endpoint" yaml:"endpoint"`
	Insecure           bool          `json:"insecure" yaml:"insecure"`
	ServiceName        string        `json:"service_name" yaml:"service_name"`
	Environment        string        `json:"environment" yaml:"environment"`
	SamplingRate       float64       `json:"sampling_rate" yaml:"sampling_rate"`
	BatchTimeout       time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
	ExportTimeout      time.Duration `json:"export_timeout" yaml:"export_timeout"`
	MaxExportBatchSize int           `json:"max_export_batch_size" yaml:"max_export_batch_size"`
	SentryDSN          string        `json:"sentry_dsn" yaml:"sentry_dsn"`
	SentrySampleRate   float64       `json:"sentry_sample_rate" yaml:"sentry_sample_rate"`
}

// Provider owns the installed tracer provider.
type Provider struct {
	tp        *sdktrace.TracerProvider
	exporting bool
	sentry    bool
}

// New installs the global tracer provider and propagator, and initializes
// Sentry when configured. The cleanup flushes pending spans and events.
func New(cfg *Config, version string) (*Provider, func(), error) {
	if cfg == nil {
		cfg = &Config{}
	}
	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(version),
		attribute.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
		sdktrace.WithResource(res),
	}
	p := &Provider{}
	if cfg.Endpoint != "" {
		exp, err := newExporter(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp,
			sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize),
			sdktrace.WithBatchTimeout(cfg.BatchTimeout),
			sdktrace.WithExportTimeout(cfg.ExportTimeout),
		))
		p.exporting = true
	}
	p.tp = sdktrace.NewTracerProvider(opts...)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			AttachStacktrace: true,
			SampleRate:       cfg.SentrySampleRate,
			ServerName:       cfg.ServiceName,
			Release:          version,
			Environment:      cfg.Environment,
		})
		if err != nil {
			_ = p.tp.Shutdown(ctx)
			return nil, nil, fmt.Errorf("tracing: sentry: %w", err)
		}
		p.sentry = true
	}

	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.tp.Shutdown(ctx)
		if p.sentry {
			sentry.Flush(2 * time.Second)
		}
	}
	return p, cleanup, nil
}

func newExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if cfg.ExportTimeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.ExportTimeout))
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: exporter: %w", err)
	}
	return exp, nil
}

// Exporting reports whether spans leave the process.
func (p *Provider) Exporting() bool { return p != nil && p.exporting }

// SentryEnabled reports whether Sentry was initialized.
func (p *Provider) SentryEnabled() bool { return p != nil && p.sentry }

// Start opens a span under the global tracer provider.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceID returns the hex trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
