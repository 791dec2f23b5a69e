package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"hrreport/internal/config"
)

// NewLogger builds the JSON logger of a report run. Records go to console,
// to cfg.FilePath or to both. The returned close function releases the log
// file and is safe to call when there is none.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, func() error, error) {
	out, closeFn, err := logWriter(cfg, console)
	if err != nil {
		return nil, closeFn, err
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource:   true,
		Level:       parseLogLevel(cfg.Level),
		ReplaceAttr: readableDurations,
	})
	return slog.New(&traceHandler{Handler: handler}), closeFn, nil
}

func logWriter(cfg config.LoggingConfig, console io.Writer) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return console, noop, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}
	if mode == "file" {
		return file, file.Close, nil
	}
	return io.MultiWriter(console, file), file.Close, nil
}

// readableDurations logs step and run durations as "1.5s" instead of nanoseconds
func readableDurations(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.String(a.Key, a.Value.Duration().String())
	}
	return a
}

// traceHandler adds the run's trace_id and, inside a recording span, the
// OpenTelemetry span_id so log lines can be matched with exported spans.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps a config level to slog, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
