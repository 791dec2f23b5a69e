package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeTable() *Table {
	hired := func(y int) Cell { return TimeCell(time.Date(y, 6, 1, 0, 0, 0, 0, time.UTC)) }
	return NewTable(
		textCol("department", "IT", "HR", "IT", "Sales", "HR"),
		textCol("gender", "Female", "Male", "Female", "Male", "Female"),
		numCol("age", 30, 40, 50, 25, 35),
		numCol("annual_salary", 100000, 60000, 140000, 90000, 70000),
		&Column{Name: "hire_date", Kind: KindTime, Cells: []Cell{hired(2015), hired(2017), hired(2019), hired(2021), hired(2023)}},
	)
}

func TestAnalyzer_Sections(t *testing.T) {
	result := NewAnalyzer(discardLogger()).Analyze(context.Background(), employeeTable())

	assert.Equal(t, []string{
		SectionSummary,
		SectionAvgSalaryByDepartment,
		SectionGenderDistribution,
		SectionAgeDistribution,
	}, result.Names())

	summary, ok := result.Get(SectionSummary)
	require.True(t, ok)
	require.NotNil(t, summary.Frame)
	assert.Nil(t, summary.Series)
}

func TestAnalyzer_SkipsSectionsWithoutColumns(t *testing.T) {
	table := NewTable(
		textCol("department", "IT", "HR"),
		numCol("annual_salary", 100, 200),
	)

	result := NewAnalyzer(discardLogger()).Analyze(context.Background(), table)

	assert.Equal(t, []string{SectionSummary, SectionAvgSalaryByDepartment}, result.Names())
	_, ok := result.Get(SectionGenderDistribution)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	frame := Describe(employeeTable())

	assert.Equal(t, []string{"department", "gender", "age", "annual_salary", "hire_date"}, frame.Columns)
	assert.Equal(t, []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}, frame.Index)

	row := func(label string) []any {
		for i, l := range frame.Index {
			if l == label {
				return frame.Cells[i]
			}
		}
		t.Fatalf("row %q not found", label)
		return nil
	}

	assert.Equal(t, []any{5, 5, 5, 5, 5}, row("count"))
	assert.Equal(t, []any{3, 2, nil, nil, nil}, row("unique"))
	assert.Equal(t, "IT", row("top")[0])
	assert.Equal(t, "Female", row("top")[1])
	assert.Equal(t, 3, row("freq")[1])

	mean := row("mean")
	assert.Nil(t, mean[0], "text columns have no mean")
	assert.InDelta(t, 36.0, mean[2], 1e-9)
	assert.InDelta(t, 92000.0, mean[3], 1e-9)
	assert.Equal(t, time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), row("50%")[4])
	assert.Nil(t, row("std")[4], "time columns have no std")
}

func TestDescribe_NumericOnly(t *testing.T) {
	frame := Describe(NewTable(numCol("age", 1, 2, 3)))

	assert.Equal(t, []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, frame.Index)
}

func TestAverageSalaryByDepartment(t *testing.T) {
	s := AverageSalaryByDepartment(employeeTable(), false)

	assert.Equal(t, ColumnAnnualSalary, s.Name)
	assert.Equal(t, ColumnDepartment, s.IndexName)
	assert.Equal(t, []string{"IT", "Sales", "HR"}, s.Labels)
	assert.Equal(t, []float64{120000, 90000, 65000}, s.Values)

	asc := AverageSalaryByDepartment(employeeTable(), true)
	assert.Equal(t, []string{"HR", "Sales", "IT"}, asc.Labels)
}

func TestGenderDistribution(t *testing.T) {
	s := GenderDistribution(employeeTable())

	assert.Equal(t, "count", s.Name)
	assert.Equal(t, ColumnGender, s.IndexName)
	assert.Equal(t, []string{"Female", "Male"}, s.Labels)
	assert.Equal(t, []float64{3, 2}, s.Values)

	total := 0.0
	for _, v := range s.Values {
		total += v
	}
	assert.Equal(t, 5.0, total)
}

func TestAnalyzer_AgeDistribution(t *testing.T) {
	result := NewAnalyzer(discardLogger()).Analyze(context.Background(), employeeTable())

	section, ok := result.Get(SectionAgeDistribution)
	require.True(t, ok)
	require.NotNil(t, section.Series)

	s := section.Series
	assert.Equal(t, ColumnAge, s.Name)
	assert.Equal(t, []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, s.Labels)
	assert.Equal(t, 5.0, s.Values[0])
	assert.InDelta(t, 36.0, s.Values[1], 1e-9)
	assert.Equal(t, 25.0, s.Values[3])
	assert.InDelta(t, 30.0, s.Values[4], 1e-9)
	assert.InDelta(t, 35.0, s.Values[5], 1e-9)
	assert.InDelta(t, 40.0, s.Values[6], 1e-9)
	assert.Equal(t, 50.0, s.Values[7])
}

func TestAnalyzer_TextAgeDistribution(t *testing.T) {
	table := NewTable(textCol("age", "30s", "40s", "30s"))
	result := NewAnalyzer(discardLogger()).Analyze(context.Background(), table)

	section, ok := result.Get(SectionAgeDistribution)
	require.True(t, ok, "text ages still get a distribution section")
	require.NotNil(t, section.Frame)

	frame := section.Frame
	assert.Equal(t, []string{ColumnAge}, frame.Columns)
	assert.Equal(t, []string{"count", "unique", "top", "freq"}, frame.Index)
	assert.Equal(t, [][]any{{3}, {2}, {"30s"}, {2}}, frame.Cells)
}
