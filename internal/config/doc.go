// Package config provides configuration management for hrreport.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file ($HRREPORT_CONFIG, ./hrreport.yaml or ./configs/hrreport.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern HRREPORT_<SECTION>_<FIELD>:
//
//	HRREPORT_INPUT_PATH="Employee Sample Data.xlsx"
//	HRREPORT_INPUT_SHEET="Employee Data"
//	HRREPORT_OUTPUT_REPORT_PATH="Employees(1)_Data_Analysis.xlsx"
//	HRREPORT_CLEANING_SALARY_SCALE=1000
//	HRREPORT_LOGGING_LEVEL=debug
//	HRREPORT_TELEMETRY_TRACE_EXPORTER=stdout
//
// Date layouts given through HRREPORT_CLEANING_DATE_LAYOUTS are comma separated,
// so layouts that contain commas must come from the YAML file.
//
// # Validation
//
// Load validates the merged configuration with go-playground/validator and
// reports failures as CONFIG application errors.
package config
