package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config OpenTelemetry配置
type Config struct {
	ServiceName    string        `json:",default=werewolf" env:"OTEL_SERVICE_NAME" envDefault:"werewolf"`
	ServiceVersion string        `json:",default=dev" env:"OTEL_SERVICE_VERSION" envDefault:"dev"`
	Environment    string        `json:",default=development" env:"OTEL_ENVIRONMENT" envDefault:"development"`
	CollectorURL   string        `json:",optional" env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // host:port, 为空则不导出
	EnableTracing  bool          `json:",optional" env:"OTEL_ENABLE_TRACING"`
	EnableMetrics  bool          `json:",optional" env:"OTEL_ENABLE_METRICS"`
	SamplingRatio  float64       `json:",default=1" env:"OTEL_SAMPLING_RATIO" envDefault:"1"`
	PushInterval   time.Duration `json:",default=30s" env:"OTEL_METRIC_INTERVAL" envDefault:"30s"`
}

// ConfigFromEnv 从环境变量加载配置
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse telemetry env: %w", err)
	}
	return c, nil
}

// Provider OpenTelemetry提供者
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Metrics        *GameMetrics
	config         Config
}

// NewProvider 创建提供者. 未开启的信号使用全局 noop 实现.
func NewProvider(ctx context.Context, config Config, logger *slog.Logger, opts ...metric.Option) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{config: config}
	if config.EnableTracing && config.CollectorURL != "" {
		if p.TracerProvider, err = initTracing(ctx, res, config); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
		otel.SetTracerProvider(p.TracerProvider)
	}

	if config.EnableMetrics && config.CollectorURL != "" {
		exp, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(config.CollectorURL),
			otlpmetrichttp.WithURLPath("/v1/metrics"),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to init metrics: %w", err)
		}
		opts = append(opts, metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(config.PushInterval))))
	}
	if len(opts) > 0 {
		p.MeterProvider = metric.NewMeterProvider(append([]metric.Option{metric.WithResource(res)}, opts...)...)
		otel.SetMeterProvider(p.MeterProvider)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meter := otel.Meter(instrumentation)
	if p.MeterProvider != nil {
		meter = p.MeterProvider.Meter(instrumentation)
	}
	if p.Metrics, err = NewGameMetrics(meter); err != nil {
		return nil, fmt.Errorf("failed to create game metrics: %w", err)
	}
	logger.Info("telemetry ready", "tracing", p.TracerProvider != nil, "metrics", p.MeterProvider != nil,
		"collector", config.CollectorURL)
	return p, nil
}

const instrumentation = "github.com/cuihairu/werewolf"

// Tracer returns the engine tracer, a noop one when tracing is off.
func (p *Provider) Tracer() oteltrace.Tracer {
	if p.TracerProvider != nil {
		return p.TracerProvider.Tracer(instrumentation)
	}
	return otel.Tracer(instrumentation)
}

func initTracing(ctx context.Context, res *resource.Resource, config Config) (*trace.TracerProvider, error) {
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.CollectorURL),
		otlptracehttp.WithURLPath("/v1/traces"),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exp,
			trace.WithBatchTimeout(5*time.Second),
			trace.WithMaxExportBatchSize(512),
		),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(config.SamplingRatio))),
	), nil
}

// Shutdown 优雅关闭
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
