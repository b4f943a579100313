package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "timetrack"
	serviceVersion = "1.0.0"
)

// Recorder receives timer and login events.
type Recorder interface {
	TimerStarted(ctx context.Context, project string)
	TimerStopped(ctx context.Context, project string, durationSeconds int64)
	Login(ctx context.Context, method string, success bool)
	Close(ctx context.Context) error
}

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// Exporter records metrics through an OTEL meter provider.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	timerStarts  metric.Int64Counter
	timerStops   metric.Int64Counter
	durationHist metric.Float64Histogram
	loginsTotal  metric.Int64Counter
}

// New returns an OTLP exporter when enabled and a no-op recorder otherwise.
func New(ctx context.Context, cfg Config) (Recorder, error) {
	if !cfg.Enabled {
		return NewNoOp(), nil
	}
	return NewExporter(ctx, cfg)
}

// NewExporter creates a gRPC OTLP metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	timerStarts, err := meter.Int64Counter(
		"timetrack_timer_starts_total",
		metric.WithDescription("Number of started project timers"),
		metric.WithUnit("{timer}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating timer starts counter: %w", err)
	}

	timerStops, err := meter.Int64Counter(
		"timetrack_timer_stops_total",
		metric.WithDescription("Number of stopped project timers"),
		metric.WithUnit("{timer}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating timer stops counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"timetrack_activity_duration_seconds",
		metric.WithDescription("Duration of closed activities"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	loginsTotal, err := meter.Int64Counter(
		"timetrack_logins_total",
		metric.WithDescription("Login attempts by method and outcome"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating logins counter: %w", err)
	}

	return &Exporter{
		provider:     provider,
		timerStarts:  timerStarts,
		timerStops:   timerStops,
		durationHist: durationHist,
		loginsTotal:  loginsTotal,
	}, nil
}

func (e *Exporter) TimerStarted(ctx context.Context, project string) {
	e.timerStarts.Add(ctx, 1, metric.WithAttributes(attribute.String("project", project)))
}

func (e *Exporter) TimerStopped(ctx context.Context, project string, durationSeconds int64) {
	opt := metric.WithAttributes(attribute.String("project", project))
	e.timerStops.Add(ctx, 1, opt)
	e.durationHist.Record(ctx, float64(durationSeconds), opt)
}

func (e *Exporter) Login(ctx context.Context, method string, success bool) {
	e.loginsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	))
}

// Close shuts down the provider and flushes pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
