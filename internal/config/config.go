// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SourceConfig defines the hosted row source settings. Backend selects
// where dashboard rows come from: "rest" for the hosted HTTP API,
// "postgres" for a direct database connection.
type SourceConfig struct {
	Backend  string `yaml:"backend"` // rest, postgres
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// DatabaseConfig defines PostgreSQL connection settings, used when the
// source backend is postgres.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// FetchConfig defines bulk row fetch behavior.
type FetchConfig struct {
	PageSize int `yaml:"page_size"`
	RowCap   int `yaml:"row_cap"`
}

// AnalysisConfig defines the aggregation policy constants.
type AnalysisConfig struct {
	HorizonYear int            `yaml:"horizon_year"`
	Risk        RiskThresholds `yaml:"risk"`
}

// RiskThresholds defines the score cut points of the classification
// ladder. Zero values fall back to the built-in ladder.
type RiskThresholds struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	StaggerOffset   time.Duration `yaml:"stagger_offset"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applySourceDefaults(&cfg.Source)
	applyDatabaseDefaults(&cfg.Database)
	applyFetchDefaults(&cfg.Fetch)
	applyAnalysisDefaults(&cfg.Analysis)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applySourceDefaults(s *SourceConfig) {
	if s.Backend == "" {
		s.Backend = "rest"
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 4
	}
}

func applyFetchDefaults(f *FetchConfig) {
	if f.PageSize == 0 {
		f.PageSize = 10000
	}
	if f.RowCap == 0 {
		f.RowCap = 140000
	}
}

func applyAnalysisDefaults(a *AnalysisConfig) {
	if a.HorizonYear == 0 {
		a.HorizonYear = 2025
	}
	if a.Risk.Critical == 0 {
		a.Risk.Critical = 8.5
	}
	if a.Risk.High == 0 {
		a.Risk.High = 7.0
	}
	if a.Risk.Medium == 0 {
		a.Risk.Medium = 4.0
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshInterval == 0 {
		s.RefreshInterval = 15 * time.Minute
	}
	if s.StaggerOffset == 0 {
		s.StaggerOffset = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Source.Backend {
	case "rest":
		if cfg.Source.Endpoint == "" {
			errs = append(errs, fmt.Errorf("source.endpoint is required when backend is rest"))
		}
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when backend is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when backend is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when backend is postgres"))
		}
	default:
		errs = append(
			errs,
			fmt.Errorf("source.backend must be one of: rest, postgres (got %q)", cfg.Source.Backend),
		)
	}

	if cfg.Fetch.PageSize < 1 {
		errs = append(errs, fmt.Errorf("fetch.page_size must be positive"))
	}
	if cfg.Fetch.RowCap < cfg.Fetch.PageSize {
		errs = append(errs, fmt.Errorf("fetch.row_cap must be at least fetch.page_size"))
	}

	if t := cfg.Analysis.Risk; t.Medium >= t.High || t.High >= t.Critical {
		errs = append(errs, fmt.Errorf("analysis.risk thresholds must increase medium < high < critical"))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}
