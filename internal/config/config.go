package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageFile = "file"
	StorageBolt = "bolt"
)

var (
	storageBackends = []string{StorageFile, StorageBolt}
	logLevels       = []string{"DEBUG", "INFO", "WARN", "ERROR"}
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Upstream streams API settings
	Upstream struct {
		CatalogURL        string        `yaml:"catalog_url"`
		DetailBaseURL     string        `yaml:"detail_base_url"`
		AuthToken         string        `yaml:"auth_token"`
		UserAgent         string        `yaml:"user_agent"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		DetailConcurrency int           `yaml:"detail_concurrency"`
		DetailRateLimit   float64       `yaml:"detail_rate_limit"`
	} `yaml:"upstream"`

	// Refresh schedule. Cron wins over Interval when set.
	Refresh struct {
		Interval time.Duration `yaml:"interval"`
		Cron     string        `yaml:"cron"`
	} `yaml:"refresh"`

	// Snapshot persistence
	Storage struct {
		Backend string `yaml:"backend"`
		DataDir string `yaml:"data_dir"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"storage"`

	// Generated playlist and guide. PublicBaseURL, when set, replaces the
	// request Host in the playlist's guide URL.
	Output struct {
		PublicBaseURL string   `yaml:"public_base_url"`
		GeneratorName string   `yaml:"generator_name"`
		Categories    []string `yaml:"categories"`
	} `yaml:"output"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "0.0.0.0"
	cfg.HTTP.Port = "8880"

	cfg.Upstream.CatalogURL = "https://ppv.wtf/api/streams"
	cfg.Upstream.DetailBaseURL = "https://ppvs.su/api/streams"
	cfg.Upstream.AuthToken = "" // Optional at startup, reported on the status page
	cfg.Upstream.UserAgent = "PlexRelay/1.0"
	cfg.Upstream.RequestTimeout = 15 * time.Second
	cfg.Upstream.DetailConcurrency = 4
	cfg.Upstream.DetailRateLimit = 0

	cfg.Refresh.Interval = 3 * time.Hour

	cfg.Storage.Backend = StorageFile
	cfg.Storage.DataDir = "data"

	cfg.Output.GeneratorName = "PPVBridgeService/1.0"

	cfg.LogLevel = "INFO"

	return cfg
}

// Validate performs validation on the configuration.
// A missing auth token is not an error.
func (c *Config) Validate() error {
	var errors []string

	// Validate HTTP settings
	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if port, err := strconv.Atoi(c.HTTP.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("HTTP port must be a number between 1 and 65535, got %q", c.HTTP.Port))
	}

	// Validate upstream settings
	if err := validateURL(c.Upstream.CatalogURL); err != nil {
		errors = append(errors, fmt.Sprintf("Catalog URL: %v", err))
	}
	if err := validateURL(c.Upstream.DetailBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("Detail base URL: %v", err))
	}
	if c.Upstream.UserAgent == "" {
		errors = append(errors, "User agent is required")
	}
	if c.Upstream.RequestTimeout <= 0 {
		errors = append(errors, "Request timeout must be positive")
	}
	if c.Upstream.DetailConcurrency <= 0 {
		errors = append(errors, "Detail concurrency must be positive")
	}
	if c.Upstream.DetailRateLimit < 0 {
		errors = append(errors, "Detail rate limit must not be negative")
	}

	// Validate refresh schedule
	if c.Refresh.Cron != "" {
		if _, err := cron.ParseStandard(c.Refresh.Cron); err != nil {
			errors = append(errors, fmt.Sprintf("Refresh cron %q is invalid: %v", c.Refresh.Cron, err))
		}
	} else if c.Refresh.Interval <= 0 {
		errors = append(errors, "Refresh interval must be positive")
	}

	// Validate storage settings
	if !slices.Contains(storageBackends, c.Storage.Backend) {
		errors = append(errors, fmt.Sprintf("Storage backend must be one of: %s", strings.Join(storageBackends, ", ")))
	}
	if c.Storage.DataDir == "" {
		errors = append(errors, "Data directory is required")
	}

	if c.Output.PublicBaseURL != "" {
		if err := validateURL(c.Output.PublicBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("Public base URL: %v", err))
		}
	}

	if !slices.Contains(logLevels, strings.ToUpper(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("Log level must be one of: %s", strings.Join(logLevels, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// RefreshSchedule returns the cron spec driving periodic refreshes.
func (c *Config) RefreshSchedule() string {
	if c.Refresh.Cron != "" {
		return c.Refresh.Cron
	}
	return "@every " + c.Refresh.Interval.String()
}

// BoltPath returns the BoltDB file, defaulting to a file in the data directory.
func (c *Config) BoltPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return filepath.Join(c.Storage.DataDir, "stream-bridge.db")
}

// SlogLevel maps LogLevel to a slog level, defaulting to INFO.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if present), an optional .env file
// and environment variable overrides, in that order of increasing precedence.
func Load() (*Config, error) {
	// Variables already set in the environment win over the .env file
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)

	p.parseString("PPV_AUTH_TOKEN", &cfg.Upstream.AuthToken)
	p.parseString("CATALOG_URL", &cfg.Upstream.CatalogURL)
	p.parseString("DETAIL_BASE_URL", &cfg.Upstream.DetailBaseURL)
	p.parseString("USER_AGENT", &cfg.Upstream.UserAgent)
	p.parseDuration("REQUEST_TIMEOUT", &cfg.Upstream.RequestTimeout)
	p.parseInt("DETAIL_CONCURRENCY", &cfg.Upstream.DetailConcurrency)
	p.parseRate("DETAIL_RATE_LIMIT", &cfg.Upstream.DetailRateLimit)

	p.parseDuration("REFRESH_INTERVAL", &cfg.Refresh.Interval)
	p.parseString("REFRESH_CRON", &cfg.Refresh.Cron)

	p.parseEnum("STORAGE_BACKEND", &cfg.Storage.Backend, storageBackends, strings.ToLower)
	p.parseString("DATA_DIR", &cfg.Storage.DataDir)
	p.parseString("DB_PATH", &cfg.Storage.DBPath)

	p.parseString("PUBLIC_BASE_URL", &cfg.Output.PublicBaseURL)
	p.parseString("GENERATOR_NAME", &cfg.Output.GeneratorName)
	p.parseList("CATEGORIES", &cfg.Output.Categories)

	p.parseEnum("LOG_LEVEL", &cfg.LogLevel, logLevels, strings.ToUpper)

	return p.err()
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

// LogValue renders the configuration for startup logging with the token redacted.
func (c *Config) LogValue() slog.Value {
	token := "missing"
	if c.Upstream.AuthToken != "" {
		token = "set"
	}

	return slog.GroupValue(
		slog.String("http_address", c.HTTP.Address),
		slog.String("http_port", c.HTTP.Port),
		slog.String("catalog_url", c.Upstream.CatalogURL),
		slog.String("detail_base_url", c.Upstream.DetailBaseURL),
		slog.String("auth_token", token),
		slog.Duration("request_timeout", c.Upstream.RequestTimeout),
		slog.Int("detail_concurrency", c.Upstream.DetailConcurrency),
		slog.Float64("detail_rate_limit", c.Upstream.DetailRateLimit),
		slog.String("refresh_schedule", c.RefreshSchedule()),
		slog.String("storage_backend", c.Storage.Backend),
		slog.String("data_dir", c.Storage.DataDir),
		slog.String("public_base_url", c.Output.PublicBaseURL),
		slog.Any("categories", c.Output.Categories),
		slog.String("log_level", c.LogLevel),
	)
}
