package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"hrreport/internal/charts"
	"hrreport/internal/config"
	"hrreport/internal/dataprocessing"
	"hrreport/internal/exporter"
	"hrreport/internal/infrastructure"
	"hrreport/internal/validation"
)

// Step names, used as span names and as the step attribute of metrics
const (
	StepLoad      = "load"
	StepClean     = "clean"
	StepAnalyze   = "analyze"
	StepExport    = "export"
	StepVisualize = "visualize"
)

// Summary reports what one run produced
type Summary struct {
	InputRows  int
	OutputRows int
	Clean      dataprocessing.CleanStats
	Sections   []string
	ReportPath string
	Charts     []string
	Duration   time.Duration
}

// Pipeline loads an employee workbook, cleans it, analyzes it and writes the
// report workbook and charts.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	runtime  *infrastructure.RuntimeMetrics
	files    *validation.FileValidator
	cleaner  *dataprocessing.Cleaner
	analyzer *dataprocessing.Analyzer
	writer   *exporter.WorkbookWriter
	renderer *charts.Renderer
}

// New wires a pipeline from cfg. A nil tel disables tracing and metrics.
func New(cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		tracer trace.Tracer
		meter  metric.Meter
	)
	if tel != nil {
		tracer, meter = tel.Tracer, tel.Meter
	} else {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.ServiceName)
		meter = metricnoop.NewMeterProvider().Meter(infrastructure.MeterName)
	}

	pm, err := infrastructure.NewPipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	rm, err := infrastructure.NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	cleanOpts := dataprocessing.CleanOptions{
		SalaryScale:   cfg.Cleaning.SalaryScale,
		LowerQuantile: cfg.Cleaning.LowerQuantile,
		UpperQuantile: cfg.Cleaning.UpperQuantile,
		DateLayouts:   cfg.Cleaning.DateLayouts,
	}
	chartOpts := charts.Options{
		SalaryBins: cfg.Charts.SalaryBins,
		AgeBins:    cfg.Charts.AgeBins,
	}

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		tracer:   tracer,
		metrics:  pm,
		runtime:  rm,
		files:    validation.NewFileValidator(infrastructure.WithComponent(logger, "validation")),
		cleaner:  dataprocessing.NewCleaner(cleanOpts, infrastructure.WithComponent(logger, "cleaner")),
		analyzer: dataprocessing.NewAnalyzer(infrastructure.WithComponent(logger, "analyzer")),
		writer:   exporter.NewWorkbookWriter(infrastructure.WithComponent(logger, "exporter")),
		renderer: charts.NewRenderer(chartOpts, infrastructure.WithComponent(logger, "charts")),
	}, nil
}

// Run executes load, clean, analyze, export and visualize in order. The first
// failing step aborts the run; files already written are left in place.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.trace_id", infrastructure.GetTraceID(ctx)),
			attribute.String("input.path", p.cfg.Input.Path),
			attribute.String("input.sheet", p.cfg.Input.Sheet),
		),
	)
	defer span.End()

	start := time.Now()
	summary := &Summary{ReportPath: p.cfg.Output.ReportPath}
	p.logger.InfoContext(ctx, "pipeline_started",
		slog.String("input", p.cfg.Input.Path),
		slog.String("sheet", p.cfg.Input.Sheet))

	var (
		table  *dataprocessing.Table
		result *dataprocessing.AnalysisResult
	)

	steps := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{StepLoad, func(ctx context.Context) error {
			if err := p.preflight(); err != nil {
				return err
			}
			t, err := dataprocessing.ParseFileWithOptions(p.cfg.Input.Path, p.cfg.Input.Sheet,
				dataprocessing.ParseOptions{NAValues: p.cfg.Cleaning.NAValues},
				infrastructure.WithComponent(p.logger, "parser"))
			if err != nil {
				return err
			}
			table = t
			summary.InputRows = t.Len()
			p.metrics.RowsLoaded.Add(ctx, int64(t.Len()))
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.Int("rows", t.Len()),
				attribute.Int("columns", len(t.Columns)))
			return nil
		}},
		{StepClean, func(ctx context.Context) error {
			var stats dataprocessing.CleanStats
			table, stats = p.cleaner.Clean(ctx, table)
			summary.Clean = stats
			summary.OutputRows = stats.OutputRows
			p.recordClean(ctx, stats)
			return nil
		}},
		{StepAnalyze, func(ctx context.Context) error {
			result = p.analyzer.Analyze(ctx, table)
			summary.Sections = result.Names()
			trace.SpanFromContext(ctx).SetAttributes(attribute.StringSlice("sections", summary.Sections))
			return nil
		}},
		{StepExport, func(ctx context.Context) error {
			return p.writer.WriteReport(p.cfg.Output.ReportPath, table, result)
		}},
		{StepVisualize, func(ctx context.Context) error {
			if !p.cfg.Charts.Enabled {
				p.logger.InfoContext(ctx, "charts_disabled")
				return nil
			}
			written, err := p.renderer.Render(ctx, table, p.cfg.Output.ChartsDir)
			summary.Charts = written
			p.metrics.ChartsWritten.Add(ctx, int64(len(written)))
			return err
		}},
	}

	for _, s := range steps {
		if err := p.step(ctx, s.name, s.run); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pipeline failed")
			summary.Duration = time.Since(start)
			p.runtime.Record(ctx)
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	p.runtime.Record(ctx)
	span.SetStatus(codes.Ok, "pipeline completed")
	p.logger.InfoContext(ctx, "pipeline_completed",
		slog.Int("input_rows", summary.InputRows),
		slog.Int("output_rows", summary.OutputRows),
		slog.String("report", summary.ReportPath),
		slog.Int("charts", len(summary.Charts)),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

// preflight fails fast on an unreadable input or unwritable output location
func (p *Pipeline) preflight() error {
	if err := p.files.ValidateWorkbook(p.cfg.Input.Path); err != nil {
		return err
	}
	if err := p.files.ValidateOutputDirectory(filepath.Dir(p.cfg.Output.ReportPath)); err != nil {
		return err
	}
	if p.cfg.Charts.Enabled {
		return p.files.ValidateOutputDirectory(p.cfg.Output.ChartsDir)
	}
	return nil
}

// step runs fn inside its own span and records its duration
func (p *Pipeline) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("step", name)),
	)
	defer span.End()

	p.logger.InfoContext(ctx, "step_started", slog.String("step", name))
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
	}
	p.metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("step", name),
			attribute.String("status", status),
		),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "step_failed",
			slog.String("step", name),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s step failed: %w", name, err)
	}

	span.SetStatus(codes.Ok, "")
	p.logger.InfoContext(ctx, "step_completed",
		slog.String("step", name),
		slog.Duration("duration", duration))
	return nil
}

func (p *Pipeline) recordClean(ctx context.Context, stats dataprocessing.CleanStats) {
	p.metrics.RowsCleaned.Add(ctx, int64(stats.OutputRows))
	p.metrics.CellsFilled.Add(ctx, int64(stats.FilledCells))
	p.metrics.RowsDropped.Add(ctx, int64(stats.Duplicates),
		metric.WithAttributes(attribute.String("reason", "duplicate")))
	p.metrics.RowsDropped.Add(ctx, int64(stats.Outliers),
		metric.WithAttributes(attribute.String("reason", "outlier")))

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("rows.in", stats.InputRows),
		attribute.Int("rows.out", stats.OutputRows),
		attribute.Int("rows.duplicates", stats.Duplicates),
		attribute.Int("rows.outliers", stats.Outliers),
		attribute.Int("cells.filled", stats.FilledCells),
		attribute.Int("dates.unparseable", stats.DatesCoerced),
	)
	if stats.SalaryFiltered {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("salary.lower", stats.SalaryLower),
			attribute.Float64("salary.upper", stats.SalaryUpper),
		)
	}
}
