package infrastructure

import (
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics are the report pipeline instruments
type PipelineMetrics struct {
	RowsLoaded    metric.Int64Counter
	RowsCleaned   metric.Int64Counter
	RowsDropped   metric.Int64Counter
	CellsFilled   metric.Int64Counter
	StepDuration  metric.Float64Histogram
	ChartsWritten metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"hrreport.rows.loaded",
		metric.WithDescription("Rows read from the input sheet"),
	)
	if err != nil {
		return nil, err
	}

	rowsCleaned, err := meter.Int64Counter(
		"hrreport.rows.cleaned",
		metric.WithDescription("Rows left after cleaning"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"hrreport.rows.dropped",
		metric.WithDescription("Rows removed during cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	cellsFilled, err := meter.Int64Counter(
		"hrreport.cells.filled",
		metric.WithDescription("Missing cells replaced by a column mean or mode"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"hrreport.step.duration",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chartsWritten, err := meter.Int64Counter(
		"hrreport.charts.written",
		metric.WithDescription("Chart images written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:    rowsLoaded,
		RowsCleaned:   rowsCleaned,
		RowsDropped:   rowsDropped,
		CellsFilled:   cellsFilled,
		StepDuration:  stepDuration,
		ChartsWritten: chartsWritten,
	}, nil
}
