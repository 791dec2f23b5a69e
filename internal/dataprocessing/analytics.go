package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"
)

// summaryRows is the canonical order of the descriptive summary rows
var summaryRows = []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Analyzer computes the report sections of a cleaned table
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze always produces the descriptive summary and adds the department,
// gender and age sections when their columns are present.
func (a *Analyzer) Analyze(ctx context.Context, t *Table) *AnalysisResult {
	result := &AnalysisResult{}
	result.addFrame(SectionSummary, Describe(t))

	dept, salary := t.Column(ColumnDepartment), t.Column(ColumnAnnualSalary)
	if dept != nil && salary != nil && salary.Kind == KindNumber {
		result.addSeries(SectionAvgSalaryByDepartment, AverageSalaryByDepartment(t, false))
	} else {
		a.logger.DebugContext(ctx, "Skipping section", slog.String("section", SectionAvgSalaryByDepartment))
	}

	if t.Has(ColumnGender) {
		result.addSeries(SectionGenderDistribution, GenderDistribution(t))
	} else {
		a.logger.DebugContext(ctx, "Skipping section", slog.String("section", SectionGenderDistribution))
	}

	if age := t.Column(ColumnAge); age == nil {
		a.logger.DebugContext(ctx, "Skipping section", slog.String("section", SectionAgeDistribution))
	} else if age.Kind == KindNumber {
		result.addSeries(SectionAgeDistribution, describeSeries(age))
	} else {
		// text or time ages get the same summary rows as in the summary sheet
		result.addFrame(SectionAgeDistribution, Describe(NewTable(age)))
	}

	a.logger.InfoContext(ctx, "Analysis complete", slog.Any("sections", result.Names()))
	return result
}

// Describe builds the descriptive summary of every column. Rows that no
// column uses are left out.
func Describe(t *Table) *Frame {
	perColumn := make([]map[string]any, len(t.Columns))
	used := make(map[string]bool)

	for j, col := range t.Columns {
		stats := describeColumn(col)
		perColumn[j] = stats
		for label := range stats {
			used[label] = true
		}
	}

	frame := &Frame{Columns: t.Names()}
	for _, label := range summaryRows {
		if !used[label] {
			continue
		}
		row := make([]any, len(t.Columns))
		for j := range t.Columns {
			row[j] = perColumn[j][label]
		}
		frame.Index = append(frame.Index, label)
		frame.Cells = append(frame.Cells, row)
	}
	return frame
}

func describeColumn(col *Column) map[string]any {
	switch col.Kind {
	case KindNumber:
		s := DescribeNumbers(col.Numbers())
		return map[string]any{
			"count": s.Count,
			"mean":  nanToNil(s.Mean),
			"std":   nanToNil(s.Std),
			"min":   nanToNil(s.Min),
			"25%":   nanToNil(s.Q1),
			"50%":   nanToNil(s.Median),
			"75%":   nanToNil(s.Q3),
			"max":   nanToNil(s.Max),
		}
	case KindTime:
		var times []time.Time
		for _, c := range col.Cells {
			if c.Valid {
				times = append(times, c.Time)
			}
		}
		s := DescribeTimes(times)
		stats := map[string]any{"count": s.Count}
		if s.Count > 0 {
			stats["mean"] = s.Mean
			stats["min"] = s.Min
			stats["25%"] = s.Q1
			stats["50%"] = s.Median
			stats["75%"] = s.Q3
			stats["max"] = s.Max
		}
		return stats
	default:
		var texts []string
		for _, c := range col.Cells {
			if c.Valid {
				texts = append(texts, c.Text)
			}
		}
		s := DescribeTexts(texts)
		stats := map[string]any{"count": s.Count, "unique": s.Unique}
		if s.Count > 0 {
			stats["top"] = s.Top
			stats["freq"] = s.Freq
		}
		return stats
	}
}

// AverageSalaryByDepartment returns the mean annual salary per department,
// highest first unless ascending is set. Ties keep first-seen order.
func AverageSalaryByDepartment(t *Table, ascending bool) *Series {
	means := GroupMeans(t.Column(ColumnDepartment), t.Column(ColumnAnnualSalary))
	sort.SliceStable(means, func(i, j int) bool {
		if ascending {
			return means[i].Mean < means[j].Mean
		}
		return means[i].Mean > means[j].Mean
	})

	s := &Series{Name: ColumnAnnualSalary, IndexName: ColumnDepartment}
	for _, m := range means {
		s.Labels = append(s.Labels, m.Label)
		s.Values = append(s.Values, m.Mean)
	}
	return s
}

// GenderDistribution counts employees per gender, most frequent first
func GenderDistribution(t *Table) *Series {
	col := t.Column(ColumnGender)
	var labels []string
	for _, c := range col.Cells {
		if c.Valid {
			labels = append(labels, cellLabel(col.Kind, c))
		}
	}

	s := &Series{Name: "count", IndexName: ColumnGender}
	for _, lc := range ValueCounts(labels) {
		s.Labels = append(s.Labels, lc.Label)
		s.Values = append(s.Values, float64(lc.Count))
	}
	return s
}

// describeSeries returns the descriptive statistics of a number column
func describeSeries(col *Column) *Series {
	st := DescribeNumbers(col.Numbers())
	return &Series{
		Name:   col.Name,
		Labels: []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		Values: []float64{float64(st.Count), st.Mean, st.Std, st.Min, st.Q1, st.Median, st.Q3, st.Max},
	}
}

func nanToNil(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
