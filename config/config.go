// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	OpenAPI  OpenAPIConfig  `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig configures the served locales.
type CatalogConfig struct {
	DefaultLocale string            `yaml:"default_locale"`
	Locales       map[string]string `yaml:"locales"` // locale -> database file; relative paths resolve against the config file
	HotReload     bool              `yaml:"hot_reload"`
	// RestoreOnFailure serves the latest stored snapshot when a locale's
	// file cannot be loaded at startup.
	RestoreOnFailure bool `yaml:"restore_on_failure"`
}

// DatabaseConfig configures the snapshot store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "console" or "auto"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	GATESDB_CATALOG_LOCALES        - Locale files: "ru=/data/ru.json,es=/data/es.json" (required)
//	GATESDB_CATALOG_DEFAULT_LOCALE - Default locale (default: first locale in sorted order)
//	GATESDB_CATALOG_HOT_RELOAD     - Reload catalogs when their files change
//	GATESDB_DATABASE_DRIVER        - Snapshot store: sqlite or memory
//	GATESDB_DATABASE_DSN           - SQLite database path
//	GATESDB_SERVER_HOST            - Server host (default: 0.0.0.0)
//	GATESDB_SERVER_PORT            - Server port (default: 8080)
//	GATESDB_LOG_LEVEL              - Log level: debug, info, warn, error (default: info)
//	GATESDB_LOG_FORMAT             - Log format: json, console or auto (default: json)
//	GATESDB_METRICS_ENABLED        - Enable /metrics endpoint
//	GATESDB_OPENAPI_ENABLED        - Enable OpenAPI/Swagger
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set GATESDB_CATALOG_LOCALES")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("GATESDB_CATALOG_LOCALES") != ""
}

// applyEnvOverrides applies GATESDB_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("GATESDB_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GATESDB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATESDB_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("GATESDB_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Catalog configuration
	if v := os.Getenv("GATESDB_CATALOG_LOCALES"); v != "" {
		cfg.Catalog.Locales = parseLocales(v)
	}
	if v := os.Getenv("GATESDB_CATALOG_DEFAULT_LOCALE"); v != "" {
		cfg.Catalog.DefaultLocale = v
	}
	if v := os.Getenv("GATESDB_CATALOG_HOT_RELOAD"); v != "" {
		cfg.Catalog.HotReload = parseBool(v)
	}
	if v := os.Getenv("GATESDB_CATALOG_RESTORE_ON_FAILURE"); v != "" {
		cfg.Catalog.RestoreOnFailure = parseBool(v)
	}

	// Database configuration
	if v := os.Getenv("GATESDB_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("GATESDB_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("GATESDB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GATESDB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("GATESDB_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("GATESDB_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseLocales parses "ru=/data/ru.json,es=/data/es.json". Malformed
// entries are skipped.
func parseLocales(v string) map[string]string {
	locales := make(map[string]string)
	for _, entry := range strings.Split(v, ",") {
		locale, path, ok := strings.Cut(entry, "=")
		locale, path = strings.TrimSpace(locale), strings.TrimSpace(path)
		if !ok || locale == "" || path == "" {
			continue
		}
		locales[locale] = path
	}
	return locales
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func resolvePaths(cfg *Config, base string) {
	for locale, path := range cfg.Catalog.Locales {
		if path != "" && !filepath.IsAbs(path) {
			cfg.Catalog.Locales[locale] = filepath.Join(base, path)
		}
	}
	if cfg.Database.DSN != "" && cfg.Database.DSN != ":memory:" && !filepath.IsAbs(cfg.Database.DSN) {
		cfg.Database.DSN = filepath.Join(base, cfg.Database.DSN)
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Catalog.DefaultLocale == "" && len(cfg.Catalog.Locales) > 0 {
		cfg.Catalog.DefaultLocale = slices.Sorted(maps.Keys(cfg.Catalog.Locales))[0]
	}

	if cfg.Database.Driver == "" {
		if cfg.Database.DSN == "" {
			cfg.Database.Driver = "memory"
		} else {
			cfg.Database.Driver = "sqlite"
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if len(cfg.Catalog.Locales) == 0 {
		return fmt.Errorf("catalog.locales must name at least one locale")
	}
	for locale, path := range cfg.Catalog.Locales {
		if path == "" {
			return fmt.Errorf("catalog.locales.%s: path is required", locale)
		}
	}
	if _, ok := cfg.Catalog.Locales[cfg.Catalog.DefaultLocale]; !ok {
		return fmt.Errorf("catalog.default_locale %q is not listed in catalog.locales", cfg.Catalog.DefaultLocale)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "memory":
	case "sqlite":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when database.driver is 'sqlite'")
		}
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	validFormats := map[string]bool{"json": true, "console": true, "auto": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json', 'console' or 'auto', got %q", cfg.Logging.Format)
	}

	return nil
}
