// Package exporter writes report workbooks.
//
// WorkbookWriter saves a cleaned table to the Cleaned_Data sheet and each
// analysis section to a sheet of its own:
//
//	w := exporter.NewWorkbookWriter(logger)
//	err := w.WriteReport("output/cleaned_employee_data.xlsx", table, result)
//
// Series sections are written as two columns headed by the index name and the
// series name. Frame sections start with a blank corner cell followed by the
// column labels.
package exporter
