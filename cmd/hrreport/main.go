package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"hrreport/internal/config"
	apperrors "hrreport/internal/errors"
	"hrreport/internal/infrastructure"
	"hrreport/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one report job and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hrreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inPath := fs.String("in", "", "input workbook (overrides input.path)")
	sheet := fs.String("sheet", "", "input sheet name (overrides input.sheet)")
	outPath := fs.String("out", "", "report workbook path (overrides output.report_path)")
	chartsDir := fs.String("charts", "", "chart output directory (overrides output.charts_dir)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	applyFlags(cfg, *inPath, *sheet, *outPath, *chartsDir)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	tel, err := infrastructure.NewTelemetry(cfg.Telemetry, stderr)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx := infrastructure.EnsureTraceID(context.Background())

	p, err := pipeline.New(cfg, logger, tel)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build pipeline", slog.String("error", err.Error()))
		return 1
	}

	summary, err := p.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Report generation failed", failureAttrs(err)...)
		return 1
	}

	logger.InfoContext(ctx, "Report generated",
		slog.String("report", summary.ReportPath),
		slog.Int("rows", summary.OutputRows),
		slog.Any("charts", summary.Charts))
	return 0
}

// failureAttrs logs the full error chain plus the typed details of its AppError
func failureAttrs(err error) []any {
	attrs := []any{slog.String("error", err.Error())}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		attrs = append(attrs, slog.Any("details", appErr))
	}
	return attrs
}

// applyFlags overrides configuration with the non-empty flag values
func applyFlags(cfg *config.Config, in, sheet, out, charts string) {
	if in != "" {
		cfg.Input.Path = in
	}
	if sheet != "" {
		cfg.Input.Sheet = sheet
	}
	if out != "" {
		cfg.Output.ReportPath = out
	}
	if charts != "" {
		cfg.Output.ChartsDir = charts
	}
}
