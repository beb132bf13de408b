package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"microreport/internal/charts"
	"microreport/internal/config"
	"microreport/internal/dataprocessing"
	apperrors "microreport/internal/errors"
	"microreport/internal/exporter"
	"microreport/internal/files"
	"microreport/internal/infrastructure"
	"microreport/internal/operations"
	"microreport/internal/validation"
	"microreport/pkg/contracts"
	"microreport/pkg/contracts/domain"
)

// Pipeline stage identifiers as recorded in the manifest
const (
	StageDiscover = "discover"
	StageProcess  = "process"
	StageTables   = "tables"
	StageCharts   = "charts"
)

// Application holds every component of a single run
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Collector *apperrors.Collector
	Telemetry *infrastructure.Telemetry
	Metrics   *infrastructure.RunMetrics
	Manifest  *operations.RunManifest
	RunID     string

	locator   *files.Locator
	loader    *dataprocessing.Loader
	extractor *dataprocessing.Extractor
	tables    *exporter.TableWriter
	renderer  *charts.Renderer
	output    *files.Manager
	validator *validation.FileValidator
}

// NewApplication wires the pipeline components for cfg
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	telemetry, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, paths.TraceFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	runMetrics, err := infrastructure.CreateRunMetrics(telemetry.Meter)
	if err != nil {
		_ = telemetry.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create run metrics: %w", err)
	}

	runID := infrastructure.NewRunID()
	collector := apperrors.NewCollector(logger)

	exclude := append([]string{paths.ResultsDir}, cfg.Input.ExcludeDirs...)

	app := &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Collector: collector,
		Telemetry: telemetry,
		Metrics:   runMetrics,
		Manifest:  operations.NewRunManifest(runID, contracts.Version, paths.RootDir),
		RunID:     runID,

		locator: files.NewLocator(files.LocatorOptions{
			Root:          paths.RootDir,
			Prefix:        cfg.Input.SamplePrefix,
			ReportPattern: cfg.Input.ReportPattern,
			ExcludeDirs:   exclude,
		}, logger),
		loader:    dataprocessing.NewLoader(logger),
		extractor: dataprocessing.NewExtractor(collector, logger),
		tables:    exporter.NewTableWriter(logger),
		renderer:  charts.NewRenderer(cfg.Charts, logger),
		output:    files.NewManager(paths, logger),
		validator: validation.NewFileValidator(logger),
	}

	app.Manifest.SetConfig("sample_prefix", cfg.Input.SamplePrefix)
	app.Manifest.SetConfig("report_pattern", cfg.Input.ReportPattern)
	app.Manifest.SetConfig("results_dir", paths.ResultsDir)
	app.Manifest.SetConfig("tracing", cfg.Telemetry.Tracing)

	return app, nil
}

// Run executes the pipeline once. The returned summary is non-nil whenever
// the run got past validating the root directory, including fatal runs.
func (a *Application) Run(ctx context.Context) (*Summary, error) {
	ctx = infrastructure.WithRunID(ctx, a.RunID)
	ctx, span := a.Telemetry.Tracer.Start(ctx, "microreport.run",
		trace.WithAttributes(attribute.String("microreport.root", a.Paths.RootDir)))
	defer span.End()

	a.Logger.InfoContext(ctx, "Run started",
		slog.String("version", contracts.Version),
		slog.String("root", a.Paths.RootDir))
	a.Paths.LogPathResolution(a.Logger)

	if err := a.validator.ValidateRootDirectory(a.Paths.RootDir); err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}

	summary := &Summary{
		RunID:      a.RunID,
		ResultsDir: a.Paths.ResultsDir,
		ErrorLog:   a.Paths.ErrorLogFile,
	}

	if err := a.prepareOutput(); err != nil {
		return summary, a.fail(ctx, span, summary, err)
	}

	var samples []domain.Sample
	err := a.stage(ctx, StageDiscover, "Discover samples", func(ctx context.Context) (map[string]interface{}, error) {
		var err error
		samples, err = a.locator.Locate(ctx, a.Collector)
		if err != nil {
			return nil, apperrors.NewDiscoveryError("failed to list root directory", err).WithPath(a.Paths.RootDir)
		}
		a.Metrics.SamplesDiscovered.Add(ctx, int64(len(samples)))
		return map[string]interface{}{"samples": len(samples)}, nil
	})
	if err != nil {
		return summary, a.fail(ctx, span, summary, err)
	}
	summary.Samples = len(samples)

	aggregator := dataprocessing.NewAggregator()
	err = a.stage(ctx, StageProcess, "Process reports", func(ctx context.Context) (map[string]interface{}, error) {
		for _, sample := range samples {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if records, ok := a.processSample(ctx, sample); ok {
				aggregator.Add(records)
			}
		}
		stats := aggregator.Stats()
		return map[string]interface{}{
			"samples":        stats.Samples,
			"microorganisms": stats.Microorganisms,
			"amr_markers":    stats.AMRMarkers,
		}, nil
	})
	if err != nil {
		return summary, a.fail(ctx, span, summary, err)
	}

	tables := aggregator.Tables()
	stats := aggregator.Stats()
	summary.Processed, summary.Skipped = a.Manifest.Counts()
	summary.Microorganisms = stats.Microorganisms
	summary.AMRMarkers = stats.AMRMarkers

	err = a.stage(ctx, StageTables, "Write tables", func(ctx context.Context) (map[string]interface{}, error) {
		return nil, a.writeTables(ctx, tables)
	})
	if err != nil {
		return summary, a.fail(ctx, span, summary, err)
	}

	_ = a.stage(ctx, StageCharts, "Render charts", func(ctx context.Context) (map[string]interface{}, error) {
		summary.Charts = a.renderCharts(ctx, tables.Microorganisms)
		return map[string]interface{}{"charts": len(summary.Charts)}, nil
	})

	if err := a.output.RemoveStaging(); err != nil {
		a.Logger.WarnContext(ctx, "Failed to remove staging directory", slog.String("error", err.Error()))
	}

	if err := a.finish(ctx, summary); err != nil {
		infrastructure.RecordSpanError(span, err)
		return summary, err
	}

	a.Logger.InfoContext(ctx, "Run completed",
		slog.Int("samples", summary.Samples),
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("diagnostics", summary.Diagnostics))
	return summary, nil
}

// Close flushes and shuts down telemetry
func (a *Application) Close(ctx context.Context) error {
	return a.Telemetry.Shutdown(ctx)
}

func (a *Application) prepareOutput() error {
	if err := a.validator.ValidateOutputDirectory(a.Paths.ResultsDir); err != nil {
		return apperrors.NewOutputError("results directory is not writable", err).WithPath(a.Paths.ResultsDir)
	}
	if err := a.output.EnsureLayout(); err != nil {
		return apperrors.NewOutputError("failed to create results layout", err).WithPath(a.Paths.ResultsDir)
	}
	return nil
}

// processSample loads and extracts one sample. ok is false when the report
// could not be loaded.
func (a *Application) processSample(ctx context.Context, sample domain.Sample) (domain.SampleRecords, bool) {
	ctx, span := a.Telemetry.Tracer.Start(ctx, "microreport.sample",
		trace.WithAttributes(infrastructure.SampleAttr(sample.Name)))
	defer span.End()

	entry := operations.SampleEntry{
		Name:   sample.Name,
		ID:     sample.ID,
		Report: sample.ReportPath,
	}

	report, err := a.loader.Load(ctx, sample)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		a.recordError(ctx, err, apperrors.KindLoad)
		a.Metrics.SamplesSkipped.Add(ctx, 1)

		entry.Status = operations.StatusSkipped
		entry.Diagnostics = len(a.Collector.ForSample(sample.Name))
		entry.Reason = err.Error()
		a.Manifest.AddSample(entry)
		return domain.SampleRecords{}, false
	}

	records := a.extractor.Extract(ctx, report)

	sampleAttr := metric.WithAttributes(infrastructure.SampleAttr(sample.Name))
	a.Metrics.SamplesProcessed.Add(ctx, 1)
	a.Metrics.ReportBytes.Add(ctx, report.Size, sampleAttr)
	a.Metrics.RecordsExtracted.Add(ctx, int64(len(records.Microorganisms)),
		metric.WithAttributes(attribute.String("table", "microorganisms")))
	a.Metrics.RecordsExtracted.Add(ctx, int64(len(records.AMRMarkers)),
		metric.WithAttributes(attribute.String("table", "amr_markers")))

	entry.Status = operations.StatusProcessed
	entry.Diagnostics = len(a.Collector.ForSample(sample.Name))
	entry.Checksum = report.Checksum
	entry.SizeBytes = report.Size
	entry.Microorganisms = len(records.Microorganisms)
	entry.AMRMarkers = len(records.AMRMarkers)
	a.Manifest.AddSample(entry)

	return records, true
}

// writeTables writes both tables to staging, checks them and moves them
// into the tables directory. Every failure is an output error.
func (a *Application) writeTables(ctx context.Context, tables domain.Tables) error {
	jobs := []struct {
		name  string
		write func(path string) error
	}{
		{config.MicroorganismsTableFile, func(path string) error {
			return a.tables.WriteMicroorganisms(ctx, path, tables.Microorganisms, a.Collector)
		}},
		{config.AMRMarkersTableFile, func(path string) error {
			return a.tables.WriteAMRMarkers(ctx, path, tables.AMRMarkers, a.Collector)
		}},
	}

	for _, job := range jobs {
		staged := a.output.StagingPath(job.name)
		if err := job.write(staged); err != nil {
			return apperrors.NewOutputError("failed to write table "+job.name, err).WithPath(staged)
		}
		if err := a.validator.ValidateWorkbook(staged, config.TableSheetName); err != nil {
			return apperrors.NewOutputError("written table is not a valid workbook", err).WithPath(staged)
		}
		dst, err := a.output.PromoteTable(job.name)
		if err != nil {
			return apperrors.NewOutputError("failed to move table "+job.name, err).WithPath(dst)
		}
		a.addArtifact(ctx, operations.ArtifactTable, dst)
	}
	return nil
}

// renderCharts renders every chart into staging and moves the good ones into
// the plots directory. Failures are render diagnostics.
func (a *Application) renderCharts(ctx context.Context, records []domain.MicroorganismRecord) []string {
	staged := a.renderer.RenderAll(ctx, a.Paths.StagingDir, records, a.Collector)

	var promoted []string
	for _, name := range staged {
		src := a.output.StagingPath(name)
		if err := a.validator.ValidateImageFile(src); err != nil {
			a.Collector.Error(ctx, apperrors.NewRenderError("rendered chart is not a valid image", err).WithPath(src))
			continue
		}
		dst, err := a.output.PromotePlot(name)
		if err != nil {
			a.Collector.Error(ctx, apperrors.NewRenderError("failed to move chart "+name, err).WithPath(dst))
			continue
		}
		a.addArtifact(ctx, operations.ArtifactPlot, dst)
		promoted = append(promoted, name)
	}
	return promoted
}

func (a *Application) addArtifact(ctx context.Context, artifactType, path string) {
	if err := a.Manifest.AddArtifact(artifactType, path); err != nil {
		a.Logger.WarnContext(ctx, "Failed to checksum artifact",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	a.Metrics.ArtifactsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("type", artifactType)))
}

// stage runs fn as a named manifest stage inside its own span
func (a *Application) stage(ctx context.Context, id, name string, fn func(ctx context.Context) (map[string]interface{}, error)) error {
	ctx, span := a.Telemetry.Tracer.Start(ctx, "microreport.stage."+id)
	defer span.End()

	a.Manifest.RecordStageStart(id, name)
	start := time.Now()

	metadata, err := fn(ctx)

	a.Metrics.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", id)))

	if err != nil {
		infrastructure.RecordSpanError(span, err)
		a.Manifest.RecordStageFailure(id, err)
		return err
	}
	a.Manifest.RecordStageCompletion(id, metadata)
	return nil
}

// recordError records err in the collector. Errors that are not
// ProcessingErrors are wrapped with the fallback kind.
func (a *Application) recordError(ctx context.Context, err error, fallback apperrors.Kind) {
	var pe *apperrors.ProcessingError
	if !errors.As(err, &pe) {
		pe = apperrors.New(fallback, err.Error(), err)
	}
	a.Collector.Error(ctx, pe)
}

// fail records a fatal error, writes what can still be written and returns err
func (a *Application) fail(ctx context.Context, span trace.Span, summary *Summary, err error) error {
	infrastructure.RecordSpanError(span, err)
	a.recordError(ctx, err, apperrors.KindOutput)
	a.Manifest.RecordStageFailure("run", err)

	summary.Failed = true
	if kind, ok := apperrors.KindOf(err); ok {
		summary.FailureKind = string(kind)
	}
	if finishErr := a.finish(ctx, summary); finishErr != nil {
		a.Logger.ErrorContext(ctx, "Failed to finalise run", slog.String("error", finishErr.Error()))
	}
	_ = a.output.RemoveStaging()

	a.Logger.ErrorContext(ctx, "Run failed",
		slog.String("kind", summary.FailureKind),
		slog.String("error", err.Error()))
	return err
}

// finish records diagnostic counts, writes metrics and the manifest and
// flushes the error log.
func (a *Application) finish(ctx context.Context, summary *Summary) error {
	byKind := make(map[string]int)
	for kind, n := range a.Collector.CountByKind() {
		byKind[string(kind)] = n
		a.Metrics.Diagnostics.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", string(kind))))
	}
	summary.Diagnostics = a.Collector.Len()

	var errs []error

	if !a.Config.Output.DisableMetrics && a.resultsReady() {
		if err := a.Telemetry.WriteMetrics(a.Paths.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			a.addArtifact(ctx, operations.ArtifactMetrics, a.Paths.MetricsFile)
		}
	}

	if err := a.Collector.Flush(ctx, a.Paths.ErrorLogFile); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush error log: %w", err))
	}

	a.Manifest.Finish(byKind)
	if !a.Config.Output.DisableManifest && a.resultsReady() {
		if err := a.Manifest.SaveToFile(a.Paths.ManifestFile); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (a *Application) resultsReady() bool {
	info, err := os.Stat(a.Paths.ResultsDir)
	return err == nil && info.IsDir()
}
