package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// PolicyName selects the deployed persistence shape.
type PolicyName string

const (
	// PolicySingle keeps catalog attributes and the latest price point in
	// one overwritten table.
	PolicySingle PolicyName = "single"
	// PolicySplit keeps a catalog table plus an append-only price history.
	PolicySplit PolicyName = "split"
)

// Config is the explicit application configuration. It is built once at
// process start and passed by reference into every component; no component
// reads ambient globals.
type Config struct {
	Market   MarketConfig   `toml:"market"`
	Database DatabaseConfig `toml:"database"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
}

// MarketConfig configures the upstream market API client.
type MarketConfig struct {
	APIKey  string `toml:"api_key"`  // raw key or a full "Bearer ..." value
	BaseURL string `toml:"base_url"` // empty means the production host
}

// DatabaseConfig configures the Postgres connection. ConnStr wins when set;
// otherwise a DSN is assembled from the individual fields.
type DatabaseConfig struct {
	ConnStr  string `toml:"conn_str"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

// PipelineConfig configures sweep and persistence behavior.
type PipelineConfig struct {
	DefaultCategoryCode int    `toml:"default_category_code"`
	MaxPages            int    `toml:"max_pages"`
	Policy              string `toml:"policy"`            // "single" or "split"
	ScheduleInterval    string `toml:"schedule_interval"` // e.g. "5m"; "0s" disables the in-process scheduler
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "loaflow",
		},
		Pipeline: PipelineConfig{
			DefaultCategoryCode: 50000,
			MaxPages:            50,
			Policy:              string(PolicySplit),
			ScheduleInterval:    "0s",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path (if it
// exists), then environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("API_KEY"); v != "" {
		c.Market.APIKey = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		c.Market.BaseURL = v
	}
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		c.Database.ConnStr = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("DEFAULT_CATEGORY_CODE"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			c.Pipeline.DefaultCategoryCode = code
		}
	}
	if v := os.Getenv("MAX_PAGE"); v != "" {
		if pages, err := strconv.Atoi(v); err == nil {
			c.Pipeline.MaxPages = pages
		}
	}
	if v := os.Getenv("PERSISTENCE_POLICY"); v != "" {
		c.Pipeline.Policy = v
	}
	if v := os.Getenv("SCHEDULE_INTERVAL"); v != "" {
		c.Pipeline.ScheduleInterval = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks the parts of the configuration that must be usable before
// any run is attempted.
func (c *Config) Validate() error {
	if c.Market.APIKey == "" {
		return &domain.ConfigError{Field: "market.api_key", Reason: "no market API credential configured"}
	}
	if c.Pipeline.DefaultCategoryCode <= 0 {
		return &domain.ConfigError{Field: "pipeline.default_category_code", Reason: "must be a positive category code"}
	}
	if c.Pipeline.MaxPages <= 0 {
		return &domain.ConfigError{Field: "pipeline.max_pages", Reason: "must be positive"}
	}
	switch PolicyName(c.Pipeline.Policy) {
	case PolicySingle, PolicySplit:
	default:
		return &domain.ConfigError{Field: "pipeline.policy", Reason: fmt.Sprintf("unknown policy %q", c.Pipeline.Policy)}
	}
	if _, err := c.ScheduleInterval(); err != nil {
		return &domain.ConfigError{Field: "pipeline.schedule_interval", Reason: err.Error()}
	}
	return nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.Database.ConnStr != "" {
		return c.Database.ConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
}

// ScheduleInterval parses the in-process scheduler interval. Zero disables
// the scheduler.
func (c *Config) ScheduleInterval() (time.Duration, error) {
	if c.Pipeline.ScheduleInterval == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(c.Pipeline.ScheduleInterval)
	if err != nil {
		return 0, fmt.Errorf("parse schedule interval: %w", err)
	}
	if interval < 0 {
		return 0, fmt.Errorf("schedule interval must not be negative")
	}
	return interval, nil
}
