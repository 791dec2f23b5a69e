package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "hrreport/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "HRREPORT"

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the source workbook
type InputConfig struct {
	Path  string `yaml:"path" envconfig:"PATH" validate:"required"`
	Sheet string `yaml:"sheet" envconfig:"SHEET" validate:"required"`
}

// OutputConfig locates the generated report and charts
type OutputConfig struct {
	ReportPath string `yaml:"report_path" envconfig:"REPORT_PATH" validate:"required"`
	ChartsDir  string `yaml:"charts_dir" envconfig:"CHARTS_DIR" validate:"required"`
}

// CleaningConfig contains the tunables of the cleaning step
type CleaningConfig struct {
	SalaryScale   float64  `yaml:"salary_scale" envconfig:"SALARY_SCALE" validate:"gt=0"`
	LowerQuantile float64  `yaml:"lower_quantile" envconfig:"LOWER_QUANTILE" validate:"gte=0,lte=1"`
	UpperQuantile float64  `yaml:"upper_quantile" envconfig:"UPPER_QUANTILE" validate:"gtefield=LowerQuantile,lte=1"`
	DateLayouts   []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS" validate:"dive,required"`
	NAValues      []string `yaml:"na_values" envconfig:"NA_VALUES"`
}

// ChartsConfig controls chart rendering
type ChartsConfig struct {
	Enabled    bool `yaml:"enabled" envconfig:"ENABLED"`
	SalaryBins int  `yaml:"salary_bins" envconfig:"SALARY_BINS" validate:"gt=0"`
	AgeBins    int  `yaml:"age_bins" envconfig:"AGE_BINS" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// DefaultDateLayouts are tried in order when hire dates arrive as text.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"2006/01/02",
	"02-Jan-2006",
	"January 2, 2006",
}

// DefaultNAValues are the cell texts read as missing, the markers pandas and
// R exports leave behind.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:  "Employee Sample Data.xlsx",
			Sheet: "Employee Data",
		},
		Output: OutputConfig{
			ReportPath: "Employees(1)_Data_Analysis.xlsx",
			ChartsDir:  ".",
		},
		Cleaning: CleaningConfig{
			SalaryScale:   1000,
			LowerQuantile: 0.01,
			UpperQuantile: 0.99,
			DateLayouts:   append([]string(nil), DefaultDateLayouts...),
			NAValues:      append([]string(nil), DefaultNAValues...),
		},
		Charts: ChartsConfig{
			Enabled:    true,
			SalaryBins: 30,
			AgeBins:    20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/hrreport.log",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Environment variables only override what they set; defaults live in Default.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if len(cfg.Cleaning.DateLayouts) == 0 {
		cfg.Cleaning.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field against its validate tag
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// loadFromFile overlays YAML values onto cfg; absent keys keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"hrreport.yaml",
		"configs/hrreport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
