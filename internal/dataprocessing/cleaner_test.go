package dataprocessing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleaner() *Cleaner {
	return NewCleaner(DefaultCleanOptions(), discardLogger())
}

func TestCleaner_DropsDuplicatesKeepingFirst(t *testing.T) {
	table := NewTable(
		textCol("Name", "Ann", "Bob", "Ann", "Ann"),
		numCol("Age", 30, 40, 30, 31),
	)

	cleaned, stats := newTestCleaner().Clean(context.Background(), table)

	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 3, cleaned.Len())
	assert.Equal(t, []float64{30, 40, 31}, cleaned.Column("age").Numbers())
}

func TestCleaner_FillsMissingValues(t *testing.T) {
	hired := func(y int) Cell { return TimeCell(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)) }
	table := NewTable(
		numCol("Age", 20, nil, 40, nil),
		textCol("Gender", "Male", nil, "Female", "Female"),
		textCol("Team", "b", "a", nil, nil),
		numCol("Empty", nil, nil, nil, nil),
		&Column{Name: "Start", Kind: KindTime, Cells: []Cell{hired(2021), hired(2020), Missing, hired(2021)}},
	)

	cleaned, stats := newTestCleaner().Clean(context.Background(), table)

	assert.Equal(t, 6, stats.FilledCells)
	assert.Equal(t, []float64{20, 30, 40, 30}, cleaned.Column("age").Numbers())
	assert.Equal(t, "Female", cleaned.Column("gender").Cells[1].Text)
	assert.Equal(t, "a", cleaned.Column("team").Cells[2].Text, "smallest value wins mode ties")
	assert.Equal(t, 4, cleaned.Column("empty").MissingCount(), "all-missing column stays missing")
	assert.Equal(t, 2021, cleaned.Column("start").Cells[2].Time.Year())
}

func TestCleaner_NoMissingWhereValuesExisted(t *testing.T) {
	table := NewTable(
		numCol("Age", nil, 25, 35, nil, 45),
		textCol("Department", "IT", nil, "HR", "HR", nil),
		textCol("Gender", nil, "Male", nil, "Female", "Male"),
	)

	cleaned, _ := newTestCleaner().Clean(context.Background(), table)

	for _, col := range cleaned.Columns {
		assert.Zero(t, col.MissingCount(), "column %s", col.Name)
	}
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Annual Salary", "annual_salary"},
		{"  Hire Date ", "hire_date"},
		{"EEID", "eeid"},
		{"Bonus  %", "bonus__%"},
		{"already_clean", "already_clean"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeColumnName(tt.in))
		})
	}
}

func TestCleaner_NormalizesAllColumnNames(t *testing.T) {
	table := NewTable(
		textCol(" Full Name", "Ann"),
		numCol("Annual Salary ", 100),
		textCol("Business Unit", "Corp"),
	)

	cleaned, _ := newTestCleaner().Clean(context.Background(), table)

	for _, name := range cleaned.Names() {
		assert.Equal(t, strings.ToLower(name), name)
		assert.Equal(t, strings.TrimSpace(name), name)
		assert.NotContains(t, name, " ")
	}
	assert.Equal(t, []string{"full_name", "annual_salary", "business_unit"}, cleaned.Names())
}

func TestCleaner_ParsesHireDates(t *testing.T) {
	t.Run("text column", func(t *testing.T) {
		table := NewTable(textCol("Hire Date", "2020-02-01", "03/15/2018", "not a date", " 2019-07-04 "))

		cleaned, stats := newTestCleaner().Clean(context.Background(), table)

		col := cleaned.Column(ColumnHireDate)
		require.Equal(t, KindTime, col.Kind)
		assert.Equal(t, 1, stats.DatesCoerced)
		assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), col.Cells[0].Time)
		assert.Equal(t, time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC), col.Cells[1].Time)
		assert.False(t, col.Cells[2].Valid, "unparseable date becomes missing")
		assert.Equal(t, time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC), col.Cells[3].Time)
	})

	t.Run("excel serial column", func(t *testing.T) {
		table := NewTable(numCol("hire_date", 43831, -5))

		cleaned, stats := newTestCleaner().Clean(context.Background(), table)

		col := cleaned.Column(ColumnHireDate)
		require.Equal(t, KindTime, col.Kind)
		assert.Equal(t, 1, stats.DatesCoerced)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), col.Cells[0].Time)
		assert.False(t, col.Cells[1].Valid)
	})

	t.Run("excel serial column from a 1904 workbook", func(t *testing.T) {
		table := NewTable(numCol("hire_date", 43831))
		table.Date1904 = true

		cleaned, stats := newTestCleaner().Clean(context.Background(), table)

		assert.Zero(t, stats.DatesCoerced)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), cleaned.Column(ColumnHireDate).Cells[0].Time)
	})

	t.Run("time column untouched", func(t *testing.T) {
		when := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
		table := NewTable(&Column{Name: "hire_date", Kind: KindTime, Cells: []Cell{TimeCell(when)}})

		cleaned, stats := newTestCleaner().Clean(context.Background(), table)

		assert.Zero(t, stats.DatesCoerced)
		assert.Equal(t, when, cleaned.Column(ColumnHireDate).Cells[0].Time)
	})
}

func TestCleaner_ScalesSalary(t *testing.T) {
	original := []any{50, 60.5, 70, 80, 90}
	table := NewTable(numCol("Annual Salary", original...))

	opts := DefaultCleanOptions()
	opts.LowerQuantile, opts.UpperQuantile = 0, 1
	cleaned, stats := NewCleaner(opts, discardLogger()).Clean(context.Background(), table)

	assert.Zero(t, stats.Outliers)
	assert.Equal(t, []float64{50000, 60500, 70000, 80000, 90000}, cleaned.Column(ColumnAnnualSalary).Numbers())
}

func TestCleaner_CoercesTextSalary(t *testing.T) {
	table := NewTable(textCol("annual_salary", "$120", "95", "n/a", "1,100"))

	opts := DefaultCleanOptions()
	opts.LowerQuantile, opts.UpperQuantile = 0, 1
	cleaned, stats := NewCleaner(opts, discardLogger()).Clean(context.Background(), table)

	col := cleaned.Column(ColumnAnnualSalary)
	assert.Equal(t, KindNumber, col.Kind)
	assert.Equal(t, 1, stats.SalaryCoerced)
	assert.Equal(t, 1, stats.Outliers, "unparseable salary is outside the kept range")
	assert.Equal(t, []float64{120000, 95000, 1100000}, col.Numbers())
}

func TestCleaner_DropsSalaryOutliers(t *testing.T) {
	salaries := make([]any, 100)
	ids := make([]any, 100)
	for i := range salaries {
		salaries[i] = i + 1
		ids[i] = i + 1
	}
	table := NewTable(numCol("EEID", ids...), numCol("Annual Salary", salaries...))

	cleaned, stats := newTestCleaner().Clean(context.Background(), table)

	assert.Equal(t, 2, stats.Outliers)
	assert.Equal(t, 98, cleaned.Len())
	assert.InDelta(t, 1990, stats.SalaryLower, 1e-6)
	assert.InDelta(t, 99010, stats.SalaryUpper, 1e-6)

	got := cleaned.Column(ColumnAnnualSalary).Numbers()
	assert.Equal(t, 2000.0, got[0])
	assert.Equal(t, 99000.0, got[len(got)-1])

	// Every kept salary is its original value times 1000
	for i, id := range cleaned.Column("eeid").Numbers() {
		assert.Equal(t, id*1000, got[i])
	}
}

func TestCleaner_TrimsTextWhitespace(t *testing.T) {
	table := NewTable(
		textCol("Department", "  IT ", "HR\t", " Sales"),
		textCol("Gender", "Male ", " Female", "Male"),
	)

	cleaned, _ := newTestCleaner().Clean(context.Background(), table)

	var depts []string
	for _, c := range cleaned.Column("department").Cells {
		depts = append(depts, c.Text)
	}
	assert.Equal(t, []string{"IT", "HR", "Sales"}, depts)
	assert.Equal(t, "Female", cleaned.Column("gender").Cells[1].Text)
}

func TestCleaner_NeverAddsRows(t *testing.T) {
	table := NewTable(
		textCol("Department", "IT", "IT", "HR", "HR", "Ops", "Ops"),
		numCol("Annual Salary", 10, 10, 20, 30, 40, 500),
	)

	cleaned, stats := newTestCleaner().Clean(context.Background(), table)

	assert.Equal(t, 6, stats.InputRows)
	assert.LessOrEqual(t, cleaned.Len(), stats.InputRows)
	assert.Equal(t, stats.InputRows-stats.Duplicates-stats.Outliers, stats.OutputRows)
}

func TestCleaner_Deterministic(t *testing.T) {
	build := func() *Table {
		return NewTable(
			textCol("Department", "IT", nil, "HR", "IT", "HR"),
			textCol("Gender", "Male", "Female", nil, "Female", "Male"),
			numCol("Age", 30, nil, 41, 30, 52),
			numCol("Annual Salary", 100, 120, nil, 100, 90),
		)
	}

	first, _ := newTestCleaner().Clean(context.Background(), build())
	second, _ := newTestCleaner().Clean(context.Background(), build())

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.RowKey(i), second.RowKey(i))
	}
}
