package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"campus-energy/internal/metering/cleaning"
)

var (
	// ErrInvalidConfig wraps every validation failure of LoadConfig.
	ErrInvalidConfig = errors.New("dashboard: invalid config")
)

// ExportConfig holds the optional sinks. Empty settings disable a sink.
type ExportConfig struct {
	PostgresDSN  string `yaml:"postgres_dsn"`
	InfluxURL    string `yaml:"influx_url"`
	InfluxToken  string `yaml:"influx_token"`
	InfluxOrg    string `yaml:"influx_org"`
	InfluxBucket string `yaml:"influx_bucket"`
}

// PostgresEnabled reports whether the Postgres sink is configured.
func (e ExportConfig) PostgresEnabled() bool { return e.PostgresDSN != "" }

// InfluxEnabled reports whether the InfluxDB sink is configured.
func (e ExportConfig) InfluxEnabled() bool {
	return e.InfluxURL != "" && e.InfluxOrg != "" && e.InfluxBucket != ""
}

// Config defines a dashboard run.
type Config struct {
	DataDir         string       `yaml:"data_dir"`
	OutputDir       string       `yaml:"output_dir"`
	FilePattern     string       `yaml:"file_pattern"`
	NameSeparator   string       `yaml:"name_separator"`
	TimestampColumn string       `yaml:"timestamp_column"`
	ValueColumn     string       `yaml:"value_column"`
	DetectColumns   bool         `yaml:"detect_columns"`
	Imputation      string       `yaml:"imputation"`
	IngestWorkers   int          `yaml:"ingest_workers"`
	MetricsFile     string       `yaml:"metrics_file"`
	Export          ExportConfig `yaml:"export"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DataDir:         "data",
		OutputDir:       "output",
		FilePattern:     "*.csv",
		NameSeparator:   "_",
		TimestampColumn: "timestamp",
		ValueColumn:     "kwh",
		Imputation:      cleaning.PolicySkipMissing,
		IngestWorkers:   1,
		MetricsFile:     "metrics.prom",
	}
}

// LoadConfig builds a config from environment defaults overlaid with the yaml
// file at path, when path is not empty.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		DataDir:         getenvDefault("ENERGY_DATA_DIR", def.DataDir),
		OutputDir:       getenvDefault("ENERGY_OUTPUT_DIR", def.OutputDir),
		FilePattern:     getenvDefault("ENERGY_FILE_PATTERN", def.FilePattern),
		NameSeparator:   getenvDefault("ENERGY_NAME_SEPARATOR", def.NameSeparator),
		TimestampColumn: getenvDefault("ENERGY_TIMESTAMP_COLUMN", def.TimestampColumn),
		ValueColumn:     getenvDefault("ENERGY_VALUE_COLUMN", def.ValueColumn),
		DetectColumns:   getenvBoolDefault("ENERGY_DETECT_COLUMNS", def.DetectColumns),
		Imputation:      getenvDefault("ENERGY_IMPUTATION", def.Imputation),
		IngestWorkers:   getenvIntDefault("ENERGY_INGEST_WORKERS", def.IngestWorkers),
		MetricsFile:     getenvDefault("ENERGY_METRICS_FILE", def.MetricsFile),
		Export: ExportConfig{
			PostgresDSN:  os.Getenv("EXPORT_PG_DSN"),
			InfluxURL:    os.Getenv("EXPORT_INFLUX_URL"),
			InfluxToken:  os.Getenv("EXPORT_INFLUX_TOKEN"),
			InfluxOrg:    os.Getenv("EXPORT_INFLUX_ORG"),
			InfluxBucket: os.Getenv("EXPORT_INFLUX_BUCKET"),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings a run cannot do without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data dir required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output dir required", ErrInvalidConfig)
	}
	if c.IngestWorkers < 1 {
		return fmt.Errorf("%w: ingest workers must be positive", ErrInvalidConfig)
	}
	if _, err := filepath.Match(c.FilePattern, ""); err != nil {
		return fmt.Errorf("%w: file pattern: %v", ErrInvalidConfig, err)
	}
	if _, err := cleaning.PolicyByName(c.Imputation); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.ContainsAny(c.MetricsFile, `/\`) {
		return fmt.Errorf("%w: metrics file must be a bare file name", ErrInvalidConfig)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
