package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the motorista bot.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Workers   WorkersConfig   `yaml:"workers"`
	Database  DatabaseConfig  `yaml:"database"`
	Ownership OwnershipConfig `yaml:"ownership"`
	Report    ReportConfig    `yaml:"report"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TelegramConfig contains Bot API connection settings.
type TelegramConfig struct {
	// Token is the bot token issued by BotFather. Always set via
	// MOTORISTA_TELEGRAM_TOKEN in production.
	Token string `yaml:"token"`

	// BaseURL is the Bot API endpoint. Override only for testing against
	// a local mock server.
	BaseURL string `yaml:"base_url"`

	// RequestTimeout is the per-request timeout in seconds for getUpdates
	// and sendMessage calls.
	RequestTimeout int `yaml:"request_timeout"`

	// DocumentTimeout is the timeout in seconds for sendDocument uploads,
	// which carry file payloads and need more headroom.
	DocumentTimeout int `yaml:"document_timeout"`

	// SendAttempts is the number of tries for an outbound message before
	// giving up.
	SendAttempts int `yaml:"send_attempts"`

	// SendRetryDelay is the delay in seconds between send attempts.
	SendRetryDelay int `yaml:"send_retry_delay"`
}

// AuthConfig contains the operator-facing secrets.
type AuthConfig struct {
	// LoginSecret is the password operators present to /login.
	LoginSecret string `yaml:"login_secret"`

	// ReportSecret is the separate password required by /planilha.
	ReportSecret string `yaml:"report_secret"`
}

// IngestionConfig contains update-polling settings.
type IngestionConfig struct {
	// MaxFetchAttempts bounds consecutive failed getUpdates calls before
	// the batch is abandoned and the backoff counter restarts.
	MaxFetchAttempts int `yaml:"max_fetch_attempts"`

	// RetryDelay is the fixed delay in seconds between failed fetches.
	RetryDelay int `yaml:"retry_delay"`

	// ClearOnStart discards the queued update backlog before steady-state
	// polling begins.
	ClearOnStart bool `yaml:"clear_on_start"`

	// KeepLastN retains the newest N queued updates when clearing the
	// backlog. Zero discards everything.
	KeepLastN int `yaml:"keep_last_n"`
}

// WorkersConfig contains settings for the slow-command worker pool.
type WorkersConfig struct {
	// PoolSize is the number of concurrent workers handling searches and
	// report generation.
	PoolSize int `yaml:"pool_size"`

	// QueueDepth is the task channel capacity before Submit rejects work.
	QueueDepth int `yaml:"queue_depth"`
}

// DatabaseConfig contains SQLite audit database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// OwnershipConfig contains settings for the durable operator store.
type OwnershipConfig struct {
	// Path is the JSON file holding operator authentication and key
	// ownership. Rewritten wholesale on every mutation.
	Path string `yaml:"path"`
}

// ReportConfig contains spreadsheet output settings.
type ReportConfig struct {
	// Dir is the directory report files are written to.
	Dir string `yaml:"dir"`
}

// APIConfig contains the operational status HTTP server settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// InfluxDBConfig contains optional command-telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MOTORISTA_SECTION_KEY
// For example: MOTORISTA_TELEGRAM_TOKEN, MOTORISTA_AUTH_LOGIN_SECRET
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The retry and timeout values mirror the behaviour the operators already
// rely on: 30s request timeout, 5 fetch attempts 5s apart, 2 send attempts.
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			BaseURL:         "https://api.telegram.org",
			RequestTimeout:  30,
			DocumentTimeout: 60,
			SendAttempts:    2,
			SendRetryDelay:  1,
		},
		Ingestion: IngestionConfig{
			MaxFetchAttempts: 5,
			RetryDelay:       5,
			ClearOnStart:     true,
			KeepLastN:        0,
		},
		Workers: WorkersConfig{
			PoolSize:   4,
			QueueDepth: 64,
		},
		Database: DatabaseConfig{
			Path:        "data/motorista.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Ownership: OwnershipConfig{
			Path: "data/usuarios.json",
		},
		Report: ReportConfig{
			Dir: "data/reports",
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8090,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides replaces config values with environment variables where set.
func applyEnvOverrides(cfg *Config) {
	// Telegram
	if v := os.Getenv("MOTORISTA_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("MOTORISTA_TELEGRAM_BASE_URL"); v != "" {
		cfg.Telegram.BaseURL = v
	}

	// Secrets (IMPORTANT: always set via environment in production)
	if v := os.Getenv("MOTORISTA_AUTH_LOGIN_SECRET"); v != "" {
		cfg.Auth.LoginSecret = v
	}
	if v := os.Getenv("MOTORISTA_AUTH_REPORT_SECRET"); v != "" {
		cfg.Auth.ReportSecret = v
	}

	// Storage paths
	if v := os.Getenv("MOTORISTA_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MOTORISTA_OWNERSHIP_PATH"); v != "" {
		cfg.Ownership.Path = v
	}
	if v := os.Getenv("MOTORISTA_REPORT_DIR"); v != "" {
		cfg.Report.Dir = v
	}

	// API
	if v := os.Getenv("MOTORISTA_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("MOTORISTA_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.Token == "" {
		errs = append(errs, "telegram.token is required (set MOTORISTA_TELEGRAM_TOKEN environment variable)")
	}
	if c.Telegram.RequestTimeout <= 0 {
		errs = append(errs, "telegram.request_timeout must be positive")
	}
	if c.Telegram.SendAttempts < 1 {
		errs = append(errs, "telegram.send_attempts must be at least 1")
	}

	if c.Auth.LoginSecret == "" {
		errs = append(errs, "auth.login_secret is required (set MOTORISTA_AUTH_LOGIN_SECRET environment variable)")
	}
	if c.Auth.ReportSecret == "" {
		errs = append(errs, "auth.report_secret is required (set MOTORISTA_AUTH_REPORT_SECRET environment variable)")
	}

	if c.Ingestion.MaxFetchAttempts < 1 {
		errs = append(errs, "ingestion.max_fetch_attempts must be at least 1")
	}
	if c.Ingestion.RetryDelay < 0 {
		errs = append(errs, "ingestion.retry_delay must not be negative")
	}
	if c.Ingestion.KeepLastN < 0 {
		errs = append(errs, "ingestion.keep_last_n must not be negative")
	}

	if c.Workers.PoolSize < 1 {
		errs = append(errs, "workers.pool_size must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Ownership.Path == "" {
		errs = append(errs, "ownership.path is required")
	}
	if c.Report.Dir == "" {
		errs = append(errs, "report.dir is required")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRequestTimeout returns the Bot API request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Telegram.RequestTimeout) * time.Second
}

// GetDocumentTimeout returns the document upload timeout as a Duration.
func (c *Config) GetDocumentTimeout() time.Duration {
	return time.Duration(c.Telegram.DocumentTimeout) * time.Second
}

// GetSendRetryDelay returns the delay between send attempts as a Duration.
func (c *Config) GetSendRetryDelay() time.Duration {
	return time.Duration(c.Telegram.SendRetryDelay) * time.Second
}

// GetFetchRetryDelay returns the delay between failed fetches as a Duration.
func (c *Config) GetFetchRetryDelay() time.Duration {
	return time.Duration(c.Ingestion.RetryDelay) * time.Second
}
