package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"microreport/internal/config"
	"microreport/pkg/contracts"
)

// InstrumentationName names the tracer and meter used by the pipeline.
const InstrumentationName = "microreport"

// Telemetry holds the tracing and metrics providers for a single run.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry

	traceFile *os.File
	logger    *slog.Logger
}

// InitializeTelemetry sets up the tracer and meter providers.
// Spans are exported to traceFile only when tracing is enabled; metrics are
// always collected into a private Prometheus registry.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, traceFile string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := createResource(cfg)

	t := &Telemetry{logger: logger}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Tracing {
		if err := os.MkdirAll(filepath.Dir(traceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(traceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(f),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
	}
	t.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)

	t.Registry = prometheus.NewRegistry()
	promExporter, err := otelprom.New(
		otelprom.WithRegisterer(t.Registry),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)

	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)

	t.Tracer = t.TracerProvider.Tracer(InstrumentationName)
	t.Meter = t.MeterProvider.Meter(InstrumentationName)

	logger.DebugContext(ctx, "telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing", cfg.Tracing))

	return t, nil
}

// createResource describes the service with semconv attributes only.
func createResource(cfg config.TelemetryConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)
}

// WriteMetrics gathers the registry and writes it in the Prometheus text
// exposition format.
func (t *Telemetry) WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}

// RunMetrics contains the counters and histograms recorded during a run.
type RunMetrics struct {
	SamplesDiscovered metric.Int64Counter
	SamplesProcessed  metric.Int64Counter
	SamplesSkipped    metric.Int64Counter
	RecordsExtracted  metric.Int64Counter
	Diagnostics       metric.Int64Counter
	ArtifactsWritten  metric.Int64Counter
	ReportBytes       metric.Int64Counter
	StageDuration     metric.Float64Histogram
}

// CreateRunMetrics creates all run metrics on the given meter.
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	m := &RunMetrics{}
	var err error

	if m.SamplesDiscovered, err = meter.Int64Counter(
		"microreport_samples_discovered",
		metric.WithDescription("Number of sample directories discovered"),
	); err != nil {
		return nil, err
	}

	if m.SamplesProcessed, err = meter.Int64Counter(
		"microreport_samples_processed",
		metric.WithDescription("Number of samples whose report was loaded"),
	); err != nil {
		return nil, err
	}

	if m.SamplesSkipped, err = meter.Int64Counter(
		"microreport_samples_skipped",
		metric.WithDescription("Number of samples skipped because the report could not be loaded"),
	); err != nil {
		return nil, err
	}

	if m.RecordsExtracted, err = meter.Int64Counter(
		"microreport_records_extracted",
		metric.WithDescription("Number of table records extracted by table"),
	); err != nil {
		return nil, err
	}

	if m.Diagnostics, err = meter.Int64Counter(
		"microreport_diagnostics",
		metric.WithDescription("Number of diagnostics recorded by kind and severity"),
	); err != nil {
		return nil, err
	}

	if m.ArtifactsWritten, err = meter.Int64Counter(
		"microreport_artifacts_written",
		metric.WithDescription("Number of output artifacts written by type"),
	); err != nil {
		return nil, err
	}

	if m.ReportBytes, err = meter.Int64Counter(
		"microreport_report_bytes",
		metric.WithDescription("Bytes of report JSON read"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.StageDuration, err = meter.Float64Histogram(
		"microreport_stage_duration_seconds",
		metric.WithDescription("Duration of pipeline stages"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSpanError marks the span as failed with err.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SampleAttr returns the attribute used to tag spans and metrics with a
// sample name. Metric attribute keys stay valid classic Prometheus label
// names.
func SampleAttr(sample string) attribute.KeyValue {
	return attribute.String("sample", sample)
}
