package charts

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"hrreport/internal/dataprocessing"
	apperrors "hrreport/internal/errors"
)

// Chart file names
const (
	SalaryHistogramFile = "histogram salary.png"
	GenderPieFile       = "Gender pie.png"
	DepartmentBarFile   = "department barchart.png"
	AgeHistogramFile    = "histogram Age.png"
)

// Options configures chart rendering
type Options struct {
	SalaryBins int
	AgeBins    int
}

// DefaultOptions returns the default bin counts
func DefaultOptions() Options {
	return Options{SalaryBins: 30, AgeBins: 20}
}

// Renderer draws the report charts of a cleaned table
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{opts: opts, logger: logger}
}

type chart struct {
	file   string
	needs  []string
	width  vg.Length
	height vg.Length
	build  func(t *dataprocessing.Table) (*plot.Plot, error)
}

func (r *Renderer) charts() []chart {
	return []chart{
		{
			file:   SalaryHistogramFile,
			needs:  []string{dataprocessing.ColumnAnnualSalary},
			width:  8 * vg.Inch,
			height: 5 * vg.Inch,
			build: func(t *dataprocessing.Table) (*plot.Plot, error) {
				return histogram(t.Column(dataprocessing.ColumnAnnualSalary), r.opts.SalaryBins,
					"Salary Distribution", "Annual Salary")
			},
		},
		{
			file:   GenderPieFile,
			needs:  []string{dataprocessing.ColumnGender},
			width:  6 * vg.Inch,
			height: 6 * vg.Inch,
			build:  genderPie,
		},
		{
			file:   DepartmentBarFile,
			needs:  []string{dataprocessing.ColumnDepartment, dataprocessing.ColumnAnnualSalary},
			width:  10 * vg.Inch,
			height: 6 * vg.Inch,
			build:  departmentBars,
		},
		{
			file:   AgeHistogramFile,
			needs:  []string{dataprocessing.ColumnAge},
			width:  8 * vg.Inch,
			height: 5 * vg.Inch,
			build: func(t *dataprocessing.Table) (*plot.Plot, error) {
				return histogram(t.Column(dataprocessing.ColumnAge), r.opts.AgeBins,
					"Age Distribution", "Age")
			},
		},
	}
}

// Render writes every chart whose columns exist in t to outDir and returns the
// written paths. A chart whose columns hold no usable values is skipped.
func (r *Renderer) Render(ctx context.Context, t *dataprocessing.Table, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create chart directory", err).
			WithContext("dir", outDir)
	}

	var written []string
	for _, ch := range r.charts() {
		if !hasColumns(t, ch.needs) {
			r.logger.DebugContext(ctx, "Skipping chart, columns missing",
				slog.String("chart", ch.file),
				slog.Any("needs", ch.needs))
			continue
		}

		p, err := ch.build(t)
		if err != nil {
			return written, apperrors.NewRenderError("failed to build chart", err).
				WithContext("chart", ch.file)
		}
		if p == nil {
			r.logger.WarnContext(ctx, "Skipping chart, no data", slog.String("chart", ch.file))
			continue
		}

		path := filepath.Join(outDir, ch.file)
		if err := p.Save(ch.width, ch.height, path); err != nil {
			return written, apperrors.NewRenderError("failed to save chart", err).
				WithContext("path", path)
		}
		r.logger.InfoContext(ctx, "Chart written", slog.String("path", path))
		written = append(written, path)
	}
	return written, nil
}

func hasColumns(t *dataprocessing.Table, names []string) bool {
	for _, n := range names {
		if !t.Has(n) {
			return false
		}
	}
	return true
}

func histogram(col *dataprocessing.Column, bins int, title, xLabel string) (*plot.Plot, error) {
	if col.Kind != dataprocessing.KindNumber {
		return nil, nil
	}
	values := plotter.Values(col.Numbers())
	if len(values) == 0 {
		return nil, nil
	}

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid(), h)
	return p, nil
}

func genderPie(t *dataprocessing.Table) (*plot.Plot, error) {
	counts := dataprocessing.GenderDistribution(t)
	if len(counts.Labels) == 0 {
		return nil, nil
	}

	pie, err := newPieChart(counts.Labels, counts.Values)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Gender Distribution"
	p.HideAxes()
	p.Add(pie)
	return p, nil
}

func departmentBars(t *dataprocessing.Table) (*plot.Plot, error) {
	if t.Column(dataprocessing.ColumnAnnualSalary).Kind != dataprocessing.KindNumber {
		return nil, nil
	}
	means := dataprocessing.AverageSalaryByDepartment(t, true)
	if len(means.Labels) == 0 {
		return nil, nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(means.Values), vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = "Average Salary by Department"
	p.X.Label.Text = "Average Salary"
	p.Y.Label.Text = "Department"
	p.Add(plotter.NewGrid(), bars)
	p.NominalY(means.Labels...)
	return p, nil
}
