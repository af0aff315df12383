// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quotagate/quotagate/domain/tier"
)

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Enforcement EnforcementConfig `yaml:"enforcement"`
	Tiers       []TierConfig      `yaml:"tiers"`
	UsageLog    UsageLogConfig    `yaml:"usage_log"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Docs        DocsConfig        `yaml:"docs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the account store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures service-to-service authentication.
// The platform backend presents a shared key; only its bcrypt hash is
// ever configured.
type AuthConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Header         string `yaml:"header"`           // default: X-Service-Key
	// ServiceKeyHash is the bcrypt hash of the shared key. Hashes
	// contain "$", which the loader's env expansion would eat;
	// reference it as ${VAR} or use QUOTAGATE_AUTH_KEY_HASH.
	ServiceKeyHash string `yaml:"service_key_hash"`
}

// EnforcementConfig selects the quota enforcement mode.
type EnforcementConfig struct {
	// Strict routes the consume path through the store's atomic
	// increment-with-ceiling. Default (false) preserves the original
	// check-then-increment behavior.
	Strict bool `yaml:"strict"`
}

// TierConfig overrides the built-in limits for a single tier.
type TierConfig struct {
	Name                 string  `yaml:"name"`
	UploadsPerMonth      int64   `yaml:"uploads_per_month"`       // -1 = unlimited
	AudioMinutesPerMonth float64 `yaml:"audio_minutes_per_month"` // -1 = unlimited
	ContractsPerMonth    int64   `yaml:"contracts_per_month"`     // -1 = unlimited
	CanUseExtension      bool    `yaml:"can_use_extension"`
	PriorityProcessing   bool    `yaml:"priority_processing"`
}

// UsageLogConfig configures the usage audit log.
type UsageLogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

// DocsConfig configures OpenAPI/Swagger documentation.
type DocsConfig struct {
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
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Useful for container deployments where no config file is mounted.
//
// Environment variables:
//
//	QUOTAGATE_SERVER_HOST        - Server host (default: 0.0.0.0)
//	QUOTAGATE_SERVER_PORT        - Server port (default: 8080)
//	QUOTAGATE_DATABASE_DRIVER    - "sqlite" or "memory" (default: sqlite)
//	QUOTAGATE_DATABASE_DSN       - Database path (default: quotagate.db)
//	QUOTAGATE_AUTH_KEY_HASH      - bcrypt hash of the service key
//	QUOTAGATE_ENFORCEMENT_STRICT - Atomic increment-with-ceiling (default: false)
//	QUOTAGATE_LOG_LEVEL          - debug, info, warn, error (default: info)
//	QUOTAGATE_LOG_FORMAT         - json or console (default: json)
//	QUOTAGATE_METRICS_ENABLED    - Enable /metrics (default: false)
//	QUOTAGATE_DOCS_ENABLED       - Enable /docs (default: false)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// HasEnvConfig reports whether any QUOTAGATE_* configuration is set in
// the environment.
func HasEnvConfig() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "QUOTAGATE_") {
			return true
		}
	}
	return false
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// Catalog builds the effective tier catalog: built-in defaults overlaid
// with any per-tier overrides from the config file.
func (c *Config) Catalog() (tier.Catalog, error) {
	limits := map[tier.Tier]tier.Limits{}
	base := tier.DefaultCatalog()
	for _, t := range tier.All() {
		limits[t] = base.Limits(t)
	}

	for _, tc := range c.Tiers {
		t, ok := tier.Parse(tc.Name)
		if !ok {
			return tier.Catalog{}, fmt.Errorf("tiers: unknown tier %q", tc.Name)
		}
		limits[t] = tier.Limits{
			UploadsPerMonth:      tc.UploadsPerMonth,
			AudioMinutesPerMonth: tc.AudioMinutesPerMonth,
			ContractsPerMonth:    tc.ContractsPerMonth,
			CanUseExtension:      tc.CanUseExtension,
			PriorityProcessing:   tc.PriorityProcessing,
		}
	}

	catalog := tier.NewCatalog(limits)
	if err := catalog.Validate(); err != nil {
		return tier.Catalog{}, err
	}
	return catalog, nil
}

// applyEnvOverrides applies QUOTAGATE_* environment variables.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUOTAGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("QUOTAGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QUOTAGATE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("QUOTAGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("QUOTAGATE_AUTH_KEY_HASH"); v != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.ServiceKeyHash = v
	}
	if v := os.Getenv("QUOTAGATE_ENFORCEMENT_STRICT"); v != "" {
		cfg.Enforcement.Strict = parseBool(v)
	}
	if v := os.Getenv("QUOTAGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUOTAGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("QUOTAGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("QUOTAGATE_DOCS_ENABLED"); v != "" {
		cfg.Docs.Enabled = parseBool(v)
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
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "quotagate.db"
	}
	if cfg.Auth.Header == "" {
		cfg.Auth.Header = "X-Service-Key"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("database.driver must be sqlite or memory, got %q", cfg.Database.Driver)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	if cfg.Auth.Enabled && cfg.Auth.ServiceKeyHash == "" {
		return fmt.Errorf("auth.service_key_hash is required when auth is enabled")
	}

	// Tier overrides must name known tiers and keep the catalog
	// monotonic; Catalog() checks both.
	if _, err := cfg.Catalog(); err != nil {
		return err
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
