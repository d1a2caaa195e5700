package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported drivers.
const (
	DriverRedis  = "redis"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverLog    = "log"
)

// Config holds the catalogsearch configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Search   SearchConfig   `yaml:"search"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, file (default: file)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DataDir          string   `yaml:"data_dir"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	RefreshChannel   string   `yaml:"refresh_channel"`
}

// CatalogConfig points at the catalog source.
type CatalogConfig struct {
	Path           string `yaml:"path"`
	Format         string `yaml:"format"` // json, xlsx (default: by extension)
	ManualPath     string `yaml:"manual_path"`
	RebuildOnStart bool   `yaml:"rebuild_on_start"`
}

// SearchConfig holds query serving settings.
type SearchConfig struct {
	ReportUnknownTokens bool `yaml:"report_unknown_tokens"`
}

// FeedbackConfig holds unknown-token reporting settings.
type FeedbackConfig struct {
	Driver       string  `yaml:"driver"` // redis, sqlite, log (default: log)
	SQLitePath   string  `yaml:"sqlite_path"`
	RedisKey     string  `yaml:"redis_key"`
	MaxLen       int64   `yaml:"max_len"`
	RatePerSec   float64 `yaml:"rate_per_sec"`
	Burst        int     `yaml:"burst"`
	WriteTimeout int     `yaml:"write_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverFile
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.DataDir == "" {
		c.Database.DataDir = "data"
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "catalogsearch:"
	}
	if c.Database.RefreshChannel == "" {
		c.Database.RefreshChannel = c.Database.KeyPrefix + "refresh"
	}
	if c.Feedback.Driver == "" {
		c.Feedback.Driver = DriverLog
	}
	if c.Feedback.SQLitePath == "" {
		c.Feedback.SQLitePath = filepath.Join(c.Database.DataDir, "feedback.db")
	}
	if c.Feedback.RedisKey == "" {
		c.Feedback.RedisKey = c.Database.KeyPrefix + "unknown_tokens"
	}
	if c.Feedback.MaxLen <= 0 {
		c.Feedback.MaxLen = 10000
	}
	if c.Feedback.Burst <= 0 {
		c.Feedback.Burst = 10
	}
	if c.Feedback.WriteTimeout <= 0 {
		c.Feedback.WriteTimeout = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	case DriverFile:
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"file\", got %q", c.Database.Driver)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	switch c.Catalog.Format {
	case "", "json", "xlsx":
	default:
		return fmt.Errorf("catalog.format must be \"json\" or \"xlsx\", got %q", c.Catalog.Format)
	}
	switch c.Feedback.Driver {
	case DriverLog, DriverSQLite:
	case DriverRedis:
		if c.Database.Driver != DriverRedis {
			return fmt.Errorf("feedback.driver %q requires database.driver %q", DriverRedis, DriverRedis)
		}
	default:
		return fmt.Errorf(
			"feedback.driver must be \"redis\", \"sqlite\" or \"log\", got %q", c.Feedback.Driver,
		)
	}
	if c.Feedback.RatePerSec < 0 {
		return fmt.Errorf("feedback.rate_per_sec must not be negative, got %v", c.Feedback.RatePerSec)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
