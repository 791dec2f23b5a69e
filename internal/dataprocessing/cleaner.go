package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"

	"hrreport/internal/config"
)

// CleanOptions configures the cleaning step
type CleanOptions struct {
	// SalaryScale converts annual_salary to absolute currency units
	SalaryScale float64

	// LowerQuantile and UpperQuantile bound the annual_salary values kept
	LowerQuantile float64
	UpperQuantile float64

	// DateLayouts are tried in order when hire_date holds text
	DateLayouts []string
}

// DefaultCleanOptions returns the default cleaning options
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		SalaryScale:   1000,
		LowerQuantile: 0.01,
		UpperQuantile: 0.99,
		DateLayouts:   append([]string(nil), config.DefaultDateLayouts...),
	}
}

// CleanStats describes what a Clean call changed
type CleanStats struct {
	InputRows      int
	Duplicates     int
	FilledCells    int
	DatesCoerced   int
	SalaryCoerced  int
	Outliers       int
	OutputRows     int
	SalaryLower    float64
	SalaryUpper    float64
	SalaryFiltered bool
}

// Cleaner dedupes, fills, normalizes and filters employee tables
type Cleaner struct {
	opts   CleanOptions
	logger *slog.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(opts CleanOptions, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{opts: opts, logger: logger}
}

// Clean runs every cleaning step on t in place and returns t. The order is
// fixed: salary bounds are computed after scaling.
func (c *Cleaner) Clean(ctx context.Context, t *Table) (*Table, CleanStats) {
	stats := CleanStats{InputRows: t.Len()}

	stats.Duplicates = c.dropDuplicates(t)
	c.logger.InfoContext(ctx, "Dropped duplicate rows", slog.Int("duplicates", stats.Duplicates))

	stats.FilledCells = c.fillMissing(ctx, t)
	c.logger.InfoContext(ctx, "Filled missing values", slog.Int("cells", stats.FilledCells))

	NormalizeColumnNames(t)

	if col := t.Column(ColumnHireDate); col != nil {
		stats.DatesCoerced = c.parseDates(col, t.Date1904)
		c.logger.InfoContext(ctx, "Parsed hire dates", slog.Int("unparseable", stats.DatesCoerced))
	} else {
		c.logger.DebugContext(ctx, "No hire_date column, skipping date parsing")
	}

	if col := t.Column(ColumnAnnualSalary); col != nil {
		stats.SalaryCoerced = c.scaleSalary(col)
		c.logger.InfoContext(ctx, "Scaled annual salary",
			slog.Float64("factor", c.opts.SalaryScale),
			slog.Int("unparseable", stats.SalaryCoerced))

		stats.SalaryLower, stats.SalaryUpper, stats.Outliers = c.dropOutliers(t, col)
		stats.SalaryFiltered = true
		c.logger.InfoContext(ctx, "Dropped salary outliers",
			slog.Float64("lower", stats.SalaryLower),
			slog.Float64("upper", stats.SalaryUpper),
			slog.Int("rows", stats.Outliers))
	} else {
		c.logger.DebugContext(ctx, "No annual_salary column, skipping scaling and outlier removal")
	}

	TrimText(t)

	stats.OutputRows = t.Len()
	return t, stats
}

// dropDuplicates keeps the first occurrence of every exact duplicate row
func (c *Cleaner) dropDuplicates(t *Table) int {
	n := t.Len()
	seen := make(map[string]struct{}, n)
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}
	return t.Filter(keep)
}

// fillMissing replaces missing cells with the column mean (numbers) or mode
// (text and times). Columns without any present value stay missing.
func (c *Cleaner) fillMissing(ctx context.Context, t *Table) int {
	filled := 0
	for _, col := range t.Columns {
		missing := col.MissingCount()
		if missing == 0 || missing == len(col.Cells) {
			continue
		}

		var fill Cell
		switch col.Kind {
		case KindNumber:
			fill = NumberCell(stat.Mean(col.Numbers(), nil))
		case KindTime:
			fill = modeTime(col)
		default:
			fill = modeText(col)
		}

		for i := range col.Cells {
			if !col.Cells[i].Valid {
				col.Cells[i] = fill
			}
		}
		filled += missing
		c.logger.DebugContext(ctx, "Filled column",
			slog.String("column", col.Name),
			slog.String("kind", col.Kind.String()),
			slog.Int("cells", missing))
	}
	return filled
}

// modeText returns the most frequent text; the smallest value wins ties
func modeText(col *Column) Cell {
	counts := make(map[string]int)
	for _, cell := range col.Cells {
		if cell.Valid {
			counts[cell.Text]++
		}
	}
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || n == bestCount && v < best {
			best, bestCount = v, n
		}
	}
	return TextCell(best)
}

// modeTime returns the most frequent time; the earliest wins ties
func modeTime(col *Column) Cell {
	counts := make(map[int64]int)
	values := make(map[int64]time.Time)
	for _, cell := range col.Cells {
		if cell.Valid {
			k := cell.Time.UnixNano()
			counts[k]++
			values[k] = cell.Time
		}
	}
	var best int64
	bestCount := 0
	for k, n := range counts {
		if n > bestCount || n == bestCount && k < best {
			best, bestCount = k, n
		}
	}
	return TimeCell(values[best])
}

// NormalizeColumnName trims, lowercases and replaces each space with "_"
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumnNames normalizes every column name of t
func NormalizeColumnNames(t *Table) {
	for _, col := range t.Columns {
		col.Name = NormalizeColumnName(col.Name)
	}
}

// parseDates converts col to a time column. Numbers are read as Excel serials
// in the workbook's date system and text against the configured layouts;
// failures become missing. It returns the number of present cells that could
// not be parsed.
func (c *Cleaner) parseDates(col *Column, date1904 bool) int {
	if col.Kind == KindTime {
		return 0
	}

	failed := 0
	for i, cell := range col.Cells {
		if !cell.Valid {
			continue
		}
		var (
			parsed time.Time
			ok     bool
		)
		switch col.Kind {
		case KindNumber:
			if t, err := excelize.ExcelDateToTime(cell.Num, date1904); err == nil {
				parsed, ok = t, true
			}
		default:
			parsed, ok = parseTime(strings.TrimSpace(cell.Text), c.opts.DateLayouts)
		}
		if ok {
			col.Cells[i] = TimeCell(parsed)
		} else {
			col.Cells[i] = Missing
			failed++
		}
	}
	col.Kind = KindTime
	return failed
}

func parseTime(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "", "\u00a0", "")

// scaleSalary multiplies col by the configured factor, first coercing a text
// column to numbers. It returns the number of cells that were not numeric.
func (c *Cleaner) scaleSalary(col *Column) int {
	failed := 0
	if col.Kind != KindNumber {
		for i, cell := range col.Cells {
			if !cell.Valid {
				continue
			}
			v, err := strconv.ParseFloat(currencyReplacer.Replace(strings.TrimSpace(cellLabel(col.Kind, cell))), 64)
			if err != nil {
				col.Cells[i] = Missing
				failed++
				continue
			}
			col.Cells[i] = NumberCell(v)
		}
		col.Kind = KindNumber
	}

	for i := range col.Cells {
		if col.Cells[i].Valid {
			col.Cells[i].Num *= c.opts.SalaryScale
		}
	}
	return failed
}

// dropOutliers removes rows whose value is outside the configured quantile
// range of col. Missing values are outside the range.
func (c *Cleaner) dropOutliers(t *Table, col *Column) (lower, upper float64, removed int) {
	sorted := col.Numbers()
	sort.Float64s(sorted)
	lower = Quantile(sorted, c.opts.LowerQuantile)
	upper = Quantile(sorted, c.opts.UpperQuantile)

	keep := make([]bool, len(col.Cells))
	for i, cell := range col.Cells {
		keep[i] = cell.Valid && !math.IsNaN(cell.Num) && cell.Num >= lower && cell.Num <= upper
	}
	return lower, upper, t.Filter(keep)
}

// TrimText strips leading and trailing whitespace from every text cell
func TrimText(t *Table) {
	for _, col := range t.Columns {
		if col.Kind != KindText {
			continue
		}
		for i := range col.Cells {
			if col.Cells[i].Valid {
				col.Cells[i].Text = strings.TrimSpace(col.Cells[i].Text)
			}
		}
	}
}
