package exporter

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"hrreport/internal/dataprocessing"
	apperrors "hrreport/internal/errors"
)

// CleanedSheetName is the first sheet of every report workbook
const CleanedSheetName = "Cleaned_Data"

// DateTimeFormat is the number format applied to date cells
const DateTimeFormat = "yyyy-mm-dd hh:mm:ss"

// WorkbookWriter writes cleaned tables and analysis results to xlsx files
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer instance
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// styles are the cell styles shared by every sheet of one workbook
type styles struct {
	header int
	date   int
}

// WriteReport writes table to the Cleaned_Data sheet followed by one sheet per
// analysis section, overwriting any file at path.
func (w *WorkbookWriter) WriteReport(path string, table *dataprocessing.Table, result *dataprocessing.AnalysisResult) (err error) {
	w.logger.Info("Writing report workbook",
		slog.String("file_path", path),
		slog.Int("rows", table.Len()),
		slog.Int("sections", len(result.Sections)))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError("failed to create report directory", err).
				WithContext("dir", dir)
		}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close workbook", cerr)
		}
	}()

	st, err := newStyles(f)
	if err != nil {
		return apperrors.NewStorageError("failed to create workbook styles", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), CleanedSheetName); err != nil {
		return apperrors.NewStorageError("failed to name cleaned data sheet", err)
	}
	if err := writeTable(f, CleanedSheetName, table, st); err != nil {
		return apperrors.NewStorageError("failed to write cleaned data", err).
			WithContext("sheet", CleanedSheetName)
	}

	for _, section := range result.Sections {
		if _, err := f.NewSheet(section.Name); err != nil {
			return apperrors.NewStorageError("failed to add section sheet", err).
				WithContext("sheet", section.Name)
		}

		switch {
		case section.Frame != nil:
			err = writeFrame(f, section.Name, section.Frame, st)
		case section.Series != nil:
			err = writeSeries(f, section.Name, section.Series, st)
		}
		if err != nil {
			return apperrors.NewStorageError("failed to write section", err).
				WithContext("sheet", section.Name)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save report workbook", err).
			WithContext("path", path)
	}

	w.logger.Info("Report workbook written",
		slog.String("file_path", path),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, err
	}
	format := DateTimeFormat
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return styles{}, err
	}
	return styles{header: header, date: date}, nil
}

// writeTable streams the header and every row of table into sheet
func writeTable(f *excelize.File, sheet string, table *dataprocessing.Table, st styles) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for j, col := range table.Columns {
		header[j] = excelize.Cell{StyleID: st.header, Value: col.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := 0; i < table.Len(); i++ {
		row := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = tableCell(col.Kind, col.Cells[i], st)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func tableCell(kind dataprocessing.Kind, c dataprocessing.Cell, st styles) interface{} {
	if !c.Valid {
		return nil
	}
	switch kind {
	case dataprocessing.KindNumber:
		return numberValue(c.Num)
	case dataprocessing.KindTime:
		return excelize.Cell{StyleID: st.date, Value: c.Time}
	default:
		return c.Text
	}
}

// writeFrame writes a blank corner cell, the column labels, then one row per
// index label
func writeFrame(f *excelize.File, sheet string, frame *dataprocessing.Frame, st styles) error {
	header := make([]interface{}, 0, len(frame.Columns)+1)
	header = append(header, nil)
	for _, c := range frame.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, len(header), len(frame.Index), st); err != nil {
		return err
	}

	for i, label := range frame.Index {
		row := make([]interface{}, 0, len(frame.Columns)+1)
		row = append(row, label)
		for _, v := range frame.Cells[i] {
			row = append(row, frameValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		if err := styleDates(f, sheet, i+2, row, st); err != nil {
			return err
		}
	}
	return nil
}

// writeSeries writes the [index name, series name] header and one row per label
func writeSeries(f *excelize.File, sheet string, s *dataprocessing.Series, st styles) error {
	header := []interface{}{s.IndexName, s.Name}
	if s.IndexName == "" {
		header[0] = nil
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, 2, len(s.Labels), st); err != nil {
		return err
	}

	for i, label := range s.Labels {
		row := []interface{}{label, numberValue(s.Values[i])}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// styleHeader bolds the first row and the label column
func styleHeader(f *excelize.File, sheet string, width, rows int, st styles) error {
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	bottom, err := excelize.CoordinatesToCellName(1, rows+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A2", bottom, st.header)
}

func styleDates(f *excelize.File, sheet string, rowNum int, row []interface{}, st styles) error {
	for j, v := range row {
		if _, ok := v.(time.Time); !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.date); err != nil {
			return err
		}
	}
	return nil
}

func frameValue(v any) interface{} {
	if x, ok := v.(float64); ok {
		return numberValue(x)
	}
	return v
}

// numberValue maps NaN and infinities to an empty cell
func numberValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
