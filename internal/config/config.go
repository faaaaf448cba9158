package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tagfind server configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Session store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreValkey = "valkey"
)

// SessionConfig holds session lifetime, limits and filter behavior.
type SessionConfig struct {
	Store               string `yaml:"store"` // memory (default), redis, valkey
	TTLSec              int    `yaml:"ttl_sec"`
	KeyPrefix           string `yaml:"key_prefix"`
	MaxCandidates       int    `yaml:"max_candidates"`
	MaxTagsPerCandidate int    `yaml:"max_tags_per_candidate"`
	MaxRequiredTags     int    `yaml:"max_required_tags"`
	MaxTagLength        int    `yaml:"max_tag_length"`
	EmptyFilter         string `yaml:"empty_filter"` // hide_all (default), show_all
	SuggestionDistance  int    `yaml:"suggestion_distance"`
}

// DatabaseConfig holds redis/valkey connection settings for the session store.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.Session.Store == "" {
		c.Session.Store = StoreMemory
	}
	if c.Session.TTLSec <= 0 {
		c.Session.TTLSec = 1800
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "tagfind:"
	}
	if c.Session.MaxCandidates <= 0 {
		c.Session.MaxCandidates = 10000
	}
	if c.Session.MaxTagsPerCandidate <= 0 {
		c.Session.MaxTagsPerCandidate = 64
	}
	if c.Session.MaxRequiredTags <= 0 {
		c.Session.MaxRequiredTags = 16
	}
	if c.Session.MaxTagLength <= 0 {
		c.Session.MaxTagLength = 128
	}
	if c.Session.EmptyFilter == "" {
		c.Session.EmptyFilter = "hide_all"
	}
	if c.Session.SuggestionDistance <= 0 {
		c.Session.SuggestionDistance = 2
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis, StoreValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for session.store %q", c.Session.Store)
		}
	default:
		return fmt.Errorf(
			"session.store must be \"memory\", \"redis\" or \"valkey\", got %q", c.Session.Store,
		)
	}
	switch c.Session.EmptyFilter {
	case "hide_all", "show_all":
	default:
		return fmt.Errorf(
			"session.empty_filter must be \"hide_all\" or \"show_all\", got %q", c.Session.EmptyFilter,
		)
	}
	return nil
}

// TTL returns the session TTL.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSec) * time.Second
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
