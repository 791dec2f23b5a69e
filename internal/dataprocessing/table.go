package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// Well-known employee columns, by their cleaned names.
const (
	ColumnHireDate     = "hire_date"
	ColumnAnnualSalary = "annual_salary"
	ColumnDepartment   = "department"
	ColumnGender       = "gender"
	ColumnAge          = "age"
)

// Kind is the static type shared by every cell of a column
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Cell is one value of a column. Only the field matching the column kind is
// meaningful, and only when Valid is set; an invalid cell is missing.
type Cell struct {
	Num   float64
	Text  string
	Time  time.Time
	Valid bool
}

// NumberCell returns a present numeric cell
func NumberCell(v float64) Cell { return Cell{Num: v, Valid: true} }

// TextCell returns a present text cell
func TextCell(s string) Cell { return Cell{Text: s, Valid: true} }

// TimeCell returns a present time cell
func TimeCell(t time.Time) Cell { return Cell{Time: t, Valid: true} }

// Missing is the missing cell
var Missing = Cell{}

// Column is a named, homogeneously typed sequence of cells
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Numbers returns the present values of a number column in row order
func (c *Column) Numbers() []float64 {
	vals := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			vals = append(vals, cell.Num)
		}
	}
	return vals
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Valid {
			n++
		}
	}
	return n
}

// key encodes cell i so that equal cells of this column produce equal keys
func (c *Column) key(i int) string {
	cell := c.Cells[i]
	if !cell.Valid {
		return "\x00"
	}
	switch c.Kind {
	case KindNumber:
		v := cell.Num
		if v == 0 {
			v = 0 // negative zero equals zero
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case KindTime:
		return strconv.FormatInt(cell.Time.UnixNano(), 10)
	default:
		return "s" + cell.Text
	}
}

// Table is an ordered set of columns whose cells are aligned by row position
type Table struct {
	Columns []*Column

	// Date1904 is set when the source workbook counts date serials from 1904
	Date1904 bool
}

// NewTable creates a table from columns of equal length
func NewTable(columns ...*Column) *Table {
	return &Table{Columns: columns}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Column returns the first column with the given name, or nil
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Has reports whether a column with the given name exists
func (t *Table) Has(name string) bool {
	return t.Column(name) != nil
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RowKey encodes row i across all columns; two rows are exact duplicates
// when their keys are equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.Columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.key(i))
	}
	return b.String()
}

// Filter keeps the rows for which keep is true and returns how many were removed
func (t *Table) Filter(keep []bool) int {
	removed := 0
	for _, c := range t.Columns {
		kept := c.Cells[:0]
		for i, cell := range c.Cells {
			if keep[i] {
				kept = append(kept, cell)
			}
		}
		removed = len(c.Cells) - len(kept)
		c.Cells = kept
	}
	return removed
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return &Table{Columns: cols, Date1904: t.Date1904}
}

// formatNumber renders v with the fewest digits that round-trip
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
