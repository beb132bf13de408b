package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes where sample folders live and how they are named.
// An empty SamplePrefix means the prefix is detected from the folder names.
type InputConfig struct {
	Root          string   `yaml:"root" envconfig:"ROOT" validate:"required"`
	SamplePrefix  string   `yaml:"sample_prefix" envconfig:"SAMPLE_PREFIX"`
	ReportPattern string   `yaml:"report_pattern" envconfig:"REPORT_PATTERN" validate:"required,contains={id}"`
	ExcludeDirs   []string `yaml:"exclude_dirs" envconfig:"EXCLUDE_DIRS"`
}

// OutputConfig contains the results layout, relative to the input root
type OutputConfig struct {
	ResultsDir      string `yaml:"results_dir" envconfig:"RESULTS_DIR" validate:"required"`
	TablesDir       string `yaml:"tables_dir" envconfig:"TABLES_DIR" validate:"required"`
	PlotsDir        string `yaml:"plots_dir" envconfig:"PLOTS_DIR" validate:"required"`
	ErrorLog        string `yaml:"error_log" envconfig:"ERROR_LOG" validate:"required"`
	DisableManifest bool   `yaml:"disable_manifest" envconfig:"DISABLE_MANIFEST"`
	DisableMetrics  bool   `yaml:"disable_metrics" envconfig:"DISABLE_METRICS"`
}

// ChartsConfig contains chart canvas sizes in centimetres
type ChartsConfig struct {
	WidthCm           float64 `yaml:"width_cm" envconfig:"WIDTH_CM" validate:"gt=0"`
	HeightCm          float64 `yaml:"height_cm" envconfig:"HEIGHT_CM" validate:"gt=0"`
	AbundanceHeightCm float64 `yaml:"abundance_height_cm" envconfig:"ABUNDANCE_HEIGHT_CM" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig controls span export. Metrics are governed by OutputConfig.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT"`
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=Tracing true"`
}

// Load reads the configuration. Precedence is environment, then the
// config file, then defaults. configFile may be empty, in which case
// DefaultConfigFile is looked up in the working directory.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are actually set override the file
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file into cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults fills every unset field with its default value
func (c *Config) applyDefaults() {
	d := Default()

	if c.Input.Root == "" {
		c.Input.Root = d.Input.Root
	}
	if c.Input.ReportPattern == "" {
		c.Input.ReportPattern = d.Input.ReportPattern
	}

	if c.Output.ResultsDir == "" {
		c.Output.ResultsDir = d.Output.ResultsDir
	}
	if c.Output.TablesDir == "" {
		c.Output.TablesDir = d.Output.TablesDir
	}
	if c.Output.PlotsDir == "" {
		c.Output.PlotsDir = d.Output.PlotsDir
	}
	if c.Output.ErrorLog == "" {
		c.Output.ErrorLog = d.Output.ErrorLog
	}

	if c.Charts.WidthCm == 0 {
		c.Charts.WidthCm = d.Charts.WidthCm
	}
	if c.Charts.HeightCm == 0 {
		c.Charts.HeightCm = d.Charts.HeightCm
	}
	if c.Charts.AbundanceHeightCm == 0 {
		c.Charts.AbundanceHeightCm = d.Charts.AbundanceHeightCm
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = d.Logging.Output
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = d.Telemetry.Environment
	}
	if c.Telemetry.TraceFile == "" {
		c.Telemetry.TraceFile = d.Telemetry.TraceFile
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for _, name := range []string{c.Output.TablesDir, c.Output.PlotsDir} {
		if filepath.IsAbs(name) || strings.Contains(name, "..") {
			return fmt.Errorf("output subdirectory %q must be a plain relative name", name)
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	locations := []string{
		DefaultConfigFile,
		filepath.Join("configs", DefaultConfigFile),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Root:          ".",
			ReportPattern: DefaultReportPattern,
		},
		Output: OutputConfig{
			ResultsDir: DefaultResultsDir,
			TablesDir:  DefaultTablesDir,
			PlotsDir:   DefaultPlotsDir,
			ErrorLog:   DefaultErrorLog,
		},
		Charts: ChartsConfig{
			WidthCm:           17.78, // 7in
			HeightCm:          12.7,  // 5in
			AbundanceHeightCm: 27.94, // 11in
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Environment: "local",
			TraceFile:   DefaultTraceFile,
		},
	}
}
