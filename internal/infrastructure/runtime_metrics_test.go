package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrreport/internal/config"
)

func TestRuntimeMetrics_Record(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "hrreport.prom")
	tel, err := NewTelemetry(config.TelemetryConfig{TraceExporter: "none", MetricsTextfile: textfile}, nil)
	require.NoError(t, err)

	rm, err := NewRuntimeMetrics(tel.Meter)
	require.NoError(t, err)

	stats := rm.Record(context.Background())
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.HeapAlloc)
	assert.GreaterOrEqual(t, stats.TotalAlloc, stats.HeapAlloc)

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hrreport_runtime_goroutines")
	assert.Contains(t, string(content), "hrreport_runtime_heap_alloc")
}
