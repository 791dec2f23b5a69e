// Package pipeline runs the employee report job: it loads the source sheet,
// cleans it, computes the analysis sections and writes the report workbook and
// charts. Each step gets its own span and duration measurement.
package pipeline
