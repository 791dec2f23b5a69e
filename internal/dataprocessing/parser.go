package dataprocessing

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hrreport/internal/config"
	apperrors "hrreport/internal/errors"
)

// builtInDateFormats are the excelize built-in number format ids that render
// a serial as a date or time.
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// ParseOptions configures how sheet cells are read
type ParseOptions struct {
	// NAValues are exact cell texts treated as missing
	NAValues []string
}

// DefaultParseOptions returns the options ParseFile uses
func DefaultParseOptions() ParseOptions {
	return ParseOptions{NAValues: append([]string(nil), config.DefaultNAValues...)}
}

// ParseFile reads the named sheet of an Excel workbook into a Table with the
// default options.
func ParseFile(filePath, sheetName string, logger *slog.Logger) (*Table, error) {
	return ParseFileWithOptions(filePath, sheetName, DefaultParseOptions(), logger)
}

// ParseFileWithOptions reads the named sheet of an Excel workbook into a
// Table. The first row holds the column names; every later non-blank row is
// a record.
func ParseFileWithOptions(filePath, sheetName string, opts ParseOptions, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("input workbook", err).WithContext("path", filePath)
		}
		return nil, apperrors.NewStorageError("failed to stat input workbook", err).WithContext("path", filePath)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", filePath)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx == -1 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheetName), err).
			WithContext("path", filePath).
			WithContext("sheets", f.GetSheetList())
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read rows", err).WithContext("sheet", sheetName)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("sheet has no header row", nil).WithContext("sheet", sheetName)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	na := make(map[string]bool, len(opts.NAValues))
	for _, v := range opts.NAValues {
		na[v] = true
	}

	p := &sheetParser{
		file:       f,
		sheet:      sheetName,
		date1904:   date1904,
		na:         na,
		styleDates: make(map[int]bool),
	}
	table, err := p.build(rows)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded sheet",
		slog.String("path", filePath),
		slog.String("sheet", sheetName),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))
	for _, c := range table.Columns {
		logger.Debug("Column inferred",
			slog.String("column", c.Name),
			slog.String("kind", c.Kind.String()),
			slog.Int("missing", c.MissingCount()))
	}

	return table, nil
}

// sheetParser turns raw sheet rows into typed columns
type sheetParser struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	na         map[string]bool
	styleDates map[int]bool
}

// rawCell is a non-missing cell with its sheet position
type rawCell struct {
	row   int // index into the record slice
	ref   string
	value string
	text  bool // stored as a string, whatever it looks like
}

func (p *sheetParser) build(rows [][]string) (*Table, error) {
	header := rows[0]
	width := len(header)

	// Sheet row numbers of the kept records, 1-based like cell references
	var records [][]string
	var sheetRows []int
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		records = append(records, row)
		sheetRows = append(sheetRows, i+2)
	}

	names := headerNames(header, width)
	table := &Table{Columns: make([]*Column, width), Date1904: p.date1904}

	for j := 0; j < width; j++ {
		var present []rawCell
		for r, row := range records {
			if j >= len(row) || row[j] == "" || p.na[row[j]] {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, sheetRows[r])
			if err != nil {
				return nil, apperrors.NewParsingError("invalid cell coordinates", err)
			}
			text, err := p.isTextCell(ref)
			if err != nil {
				return nil, apperrors.NewParsingError("failed to read cell type", err).WithContext("cell", ref)
			}
			present = append(present, rawCell{row: r, ref: ref, value: row[j], text: text})
		}

		col := &Column{Name: names[j], Cells: make([]Cell, len(records))}
		col.Kind = p.inferKind(present)
		for _, rc := range present {
			col.Cells[rc.row] = p.convert(col.Kind, rc.value)
		}
		table.Columns[j] = col
	}

	return table, nil
}

// inferKind picks the narrowest kind that every present cell fits. A column
// without present cells is numeric; one with any string-typed cell is text,
// so "00123" keeps its leading zeros.
func (p *sheetParser) inferKind(present []rawCell) Kind {
	if len(present) == 0 {
		return KindNumber
	}

	allNumeric := true
	for _, rc := range present {
		if rc.text {
			allNumeric = false
			break
		}
		if _, err := parseNumber(rc.value); err != nil {
			allNumeric = false
			break
		}
	}
	if !allNumeric {
		return KindText
	}

	for _, rc := range present {
		if !p.isDateCell(rc.ref) {
			return KindNumber
		}
	}
	return KindTime
}

func (p *sheetParser) convert(kind Kind, raw string) Cell {
	switch kind {
	case KindNumber:
		v, err := parseNumber(raw)
		if err != nil {
			return Missing
		}
		return NumberCell(v)
	case KindTime:
		v, err := parseNumber(raw)
		if err != nil {
			return Missing
		}
		t, err := excelize.ExcelDateToTime(v, p.date1904)
		if err != nil {
			return Missing
		}
		return TimeCell(t)
	default:
		return TextCell(raw)
	}
}

// isTextCell reports whether the cell is stored as a shared, inline or
// formula string
func (p *sheetParser) isTextCell(ref string) (bool, error) {
	cellType, err := p.file.GetCellType(p.sheet, ref)
	if err != nil {
		return false, err
	}
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true, nil
	}
	return false, nil
}

// isDateCell reports whether the cell's number format renders a date or time
func (p *sheetParser) isDateCell(ref string) bool {
	styleID, err := p.file.GetCellStyle(p.sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := p.styleDates[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := p.file.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = builtInDateFormats[style.NumFmt]
		}
	}
	p.styleDates[styleID] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format code contains date
// or time tokens outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	return strings.ContainsAny(cleaned, "ydh") || strings.Contains(cleaned, "mm") && strings.Contains(cleaned, "ss")
}

// headerNames resolves column names; blank headers become "Unnamed: <index>"
// and repeated names get a ".<n>" suffix.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int)
	for j := 0; j < width; j++ {
		name := ""
		if j < len(header) {
			name = header[j]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[j] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
