package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the MatchCraft API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Prompt   PromptConfig   `yaml:"prompt"`
	Photos   PhotosConfig   `yaml:"photos"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"`
	AdminAPIKeys []string `yaml:"admin_api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMemory = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Prompt provider kinds.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// PromptConfig holds AI helper settings. An empty Provider disables the
// AI routes.
type PromptConfig struct {
	Provider    string                    `yaml:"provider"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
	MaxTokens   int                       `yaml:"max_tokens"`
	CacheTTLSec int                       `yaml:"cache_ttl_sec"`
	RateLimit   RateLimitConfig           `yaml:"rate_limit"`
}

// RateLimitConfig bounds outgoing provider calls. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// ProviderConfig holds prompt provider settings.
type ProviderConfig struct {
	Kind        string       `yaml:"kind"` // openai, gemini (default: openai)
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Temperature float32      `yaml:"temperature"`
	Budget      BudgetConfig `yaml:"budget"`
}

// Selected returns the active provider config and whether one is configured.
func (p PromptConfig) Selected() (ProviderConfig, bool) {
	if p.Provider == "" {
		return ProviderConfig{}, false
	}
	pc, ok := p.Providers[p.Provider]
	return pc, ok
}

// PhotosConfig holds object storage settings. An empty Endpoint disables
// photo uploads.
type PhotosConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
	MaxBytes  int64  `yaml:"max_bytes"`
}

// Enabled reports whether photo storage is configured.
func (p PhotosConfig) Enabled() bool { return p.Endpoint != "" }

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
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Prompt.MaxTokens <= 0 {
		c.Prompt.MaxTokens = 1024
	}
	if c.Prompt.CacheTTLSec <= 0 {
		c.Prompt.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Prompt.RateLimit.RPS > 0 && c.Prompt.RateLimit.Burst <= 0 {
		c.Prompt.RateLimit.Burst = 1
	}
	for name, p := range c.Prompt.Providers {
		if p.Kind == "" {
			p.Kind = ProviderOpenAI
			c.Prompt.Providers[name] = p
		}
	}
	if c.Photos.MaxBytes <= 0 {
		c.Photos.MaxBytes = 5 << 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be redis, valkey or memory, got %q", c.Database.Driver)
	}

	for name, p := range c.Prompt.Providers {
		switch p.Kind {
		case ProviderOpenAI, ProviderGemini:
		default:
			return fmt.Errorf("prompt.providers.%s.kind must be \"openai\" or \"gemini\", got %q", name, p.Kind)
		}
		switch p.Budget.Action {
		case "", "warn", "reject":
			// ok
		default:
			return fmt.Errorf(
				"prompt.providers.%s.budget.action must be \"warn\" or \"reject\", got %q",
				name, p.Budget.Action,
			)
		}
	}
	if c.Prompt.Provider != "" {
		p, ok := c.Prompt.Selected()
		if !ok {
			return fmt.Errorf("prompt.provider %q is not defined in prompt.providers", c.Prompt.Provider)
		}
		if p.Model == "" && p.Kind == ProviderOpenAI {
			return fmt.Errorf("prompt.providers.%s.model is required", c.Prompt.Provider)
		}
	}
	if c.Prompt.RateLimit.RPS < 0 {
		return fmt.Errorf("prompt.rate_limit.rps must not be negative, got %v", c.Prompt.RateLimit.RPS)
	}

	if c.Photos.Enabled() && c.Photos.Bucket == "" {
		return fmt.Errorf("photos.bucket is required when photos.endpoint is set")
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
