// Package dataprocessing turns one sheet of an employee workbook into a
// cleaned Table and the report sections computed from it.
//
// # Components
//
// 1. Parser: Reads a named sheet of an Excel workbook into a typed Table
// 2. Cleaner: Dedupes, fills, normalizes, scales and trims the table in place
// 3. Analyzer: Builds the descriptive summary and the per-column sections
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("Employee Sample Data.xlsx", "Employee Data", logger)
//	if err != nil {
//	    return err
//	}
//
//	cleaner := dataprocessing.NewCleaner(dataprocessing.DefaultCleanOptions(), logger)
//	table, stats := cleaner.Clean(ctx, table)
//
//	result := dataprocessing.NewAnalyzer(logger).Analyze(ctx, table)
//
// # Data Flow
//
//	Excel File → Parser → Table → Cleaner → Cleaned Table → Analyzer → AnalysisResult
//
// # Missing Values
//
// A Cell without Valid set is missing. Empty sheet cells and NA markers such
// as "N/A" load as missing, cleaning fills them from the column mean or mode,
// and values that cannot be read as dates or salaries become missing again
// instead of failing the run.
package dataprocessing
