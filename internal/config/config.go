package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ledger-reconciliation/internal/domain"
	"ledger-reconciliation/internal/engine"
)

// Config holds all reconciler configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Sources    SourcesConfig    `yaml:"sources"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Report     ReportConfig     `yaml:"report"`
}

// ServerConfig configures the HTTP upload service.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	RunTimeout    string `yaml:"run_timeout"`
	ShutdownGrace string `yaml:"shutdown_grace"`
	ServiceName   string `yaml:"service_name"`

	// RateLimitPerSec caps reconcile requests per second; 0 disables the limit.
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateBurst       int     `yaml:"rate_burst"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// SourceConfig names one ledger's columns and output labels.
type SourceConfig struct {
	Label          string `yaml:"label"`
	Prefix         string `yaml:"prefix"`
	OrderKey       string `yaml:"order_key_column,omitempty"`
	TransactionKey string `yaml:"transaction_key_column,omitempty"`
	Status         string `yaml:"status_column"`
}

// SourcesConfig groups the three ledgers.
type SourcesConfig struct {
	Order   SourceConfig `yaml:"order"`
	Gateway SourceConfig `yaml:"gateway"`
	Vault   SourceConfig `yaml:"vault"`
}

// ClassifierConfig overrides decision table priorities by category name.
type ClassifierConfig struct {
	Priorities map[string]int `yaml:"priorities"`
}

// ReportConfig controls which optional sheets are produced.
type ReportConfig struct {
	ActionSheets bool   `yaml:"action_sheets"`
	DownloadName string `yaml:"download_name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	ec := engine.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          5000,
			MaxUploadMB:   100,
			RunTimeout:    "2m",
			ShutdownGrace: "10s",
			ServiceName:   "Ledger Reconciliation",

			RateLimitPerSec: 2,
			RateBurst:       4,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Sources: SourcesConfig{
			Order:   fromColumns(ec.Order),
			Gateway: fromColumns(ec.Gateway),
			Vault:   fromColumns(ec.Vault),
		},
		Report: ReportConfig{
			DownloadName: "reconciliation_output.xlsx",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("RECON_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if mb := os.Getenv("RECON_MAX_UPLOAD_MB"); mb != "" {
		if n, err := strconv.ParseInt(mb, 10, 64); err == nil {
			c.Server.MaxUploadMB = n
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	if _, err := time.ParseDuration(c.Server.RunTimeout); err != nil {
		return fmt.Errorf("server.run_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownGrace); err != nil {
		return fmt.Errorf("server.shutdown_grace: %w", err)
	}
	if c.Server.RateLimitPerSec < 0 {
		return fmt.Errorf("server.rate_limit_per_sec must not be negative")
	}
	if c.Server.RateLimitPerSec > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1 when rate limiting is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}

	required := []struct{ key, value string }{
		{"sources.order.order_key_column", c.Sources.Order.OrderKey},
		{"sources.order.transaction_key_column", c.Sources.Order.TransactionKey},
		{"sources.gateway.order_key_column", c.Sources.Gateway.OrderKey},
		{"sources.vault.transaction_key_column", c.Sources.Vault.TransactionKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must not be empty", r.key)
		}
	}

	for cat, p := range c.Classifier.Priorities {
		if p < domain.PriorityNoAction || p > domain.PriorityCritical {
			return fmt.Errorf("classifier.priorities.%s: %d is outside 1-4", cat, p)
		}
	}
	return nil
}

// RunTimeout returns the per-request reconciliation budget.
func (c *Config) RunTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.RunTimeout)
	return d
}

// ShutdownGrace returns how long in-flight requests get on shutdown.
func (c *Config) ShutdownGrace() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownGrace)
	return d
}

// MaxUploadBytes returns the request body limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Address returns the listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EngineConfig converts the file configuration into the engine's.
func (c *Config) EngineConfig() engine.Config {
	ec := engine.Config{
		Order:        toColumns(c.Sources.Order),
		Gateway:      toColumns(c.Sources.Gateway),
		Vault:        toColumns(c.Sources.Vault),
		ActionSheets: c.Report.ActionSheets,
	}
	if len(c.Classifier.Priorities) > 0 {
		ec.Priorities = make(map[domain.Category]int, len(c.Classifier.Priorities))
		for cat, p := range c.Classifier.Priorities {
			ec.Priorities[domain.Category(cat)] = p
		}
	}
	return ec
}

func fromColumns(sc engine.SourceColumns) SourceConfig {
	return SourceConfig{
		Label:          sc.Label,
		Prefix:         sc.Prefix,
		OrderKey:       sc.OrderKey,
		TransactionKey: sc.TransactionKey,
		Status:         sc.Status,
	}
}

func toColumns(sc SourceConfig) engine.SourceColumns {
	return engine.SourceColumns{
		Label:          sc.Label,
		Prefix:         sc.Prefix,
		OrderKey:       sc.OrderKey,
		TransactionKey: sc.TransactionKey,
		Status:         sc.Status,
	}
}
