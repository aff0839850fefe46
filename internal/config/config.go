package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = "8080"
	defaultRateLimitRPS    = 25.0
	defaultRateLimitBurst  = 50
	defaultMaxRequestBytes = 16 << 20
	defaultMaxRuns         = 100
)

var validate = validator.New()

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string        `validate:"required"`
	ShutdownGracePeriod  time.Duration `validate:"gte=0"`
	ReadHeaderTimeout    time.Duration `validate:"gte=0"`
	WriteTimeout         time.Duration `validate:"gte=0"`
	IdleTimeout          time.Duration `validate:"gte=0"`
	EnableRequestLogging bool
	RateLimitRPS         float64 `validate:"gte=0"`
	RateLimitBurst       int     `validate:"gte=0"`
	MaxRequestBytes      int64   `validate:"gt=0"`
	LogLevel             string  `validate:"oneof=debug info warn error"`

	Strategy           string `validate:"oneof=greedy baseline"`
	OverlapPolicy      string `validate:"oneof=size-dependent penalize reward"`
	UnionWeight        int    `validate:"gte=0"`
	IntersectionWeight int    `validate:"gte=0"`

	Store    string        `validate:"oneof=memory redis"`
	RedisURL string        `validate:"required_if=Store redis"`
	RunTTL   time.Duration `validate:"gte=0"`
	MaxRuns  int           `validate:"gt=0"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	MaxRequestBytes      int64         `yaml:"max_request_bytes"`
	LogLevel             string        `yaml:"log_level"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Engine               yamlEngine    `yaml:"engine"`
	Store                yamlStore     `yaml:"store"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlEngine represents the assignment engine section in YAML.
type yamlEngine struct {
	Strategy           string `yaml:"strategy"`
	OverlapPolicy      string `yaml:"overlap_policy"`
	UnionWeight        *int   `yaml:"union_weight"`
	IntersectionWeight *int   `yaml:"intersection_weight"`
}

// yamlStore represents the run store section in YAML.
type yamlStore struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
	RunTTL   string `yaml:"run_ttl"`
	MaxRuns  int    `yaml:"max_runs"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
	Strategy       *string
	OverlapPolicy  *string
	Store          *string
	RedisURL       *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables (lowest precedence after defaults)
	applyEnvConfig(&cfg)

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration used when no source overrides a setting.
func Default() Config {
	return defaultConfig()
}

// Validate checks the configuration against its constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         60 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		MaxRequestBytes:      defaultMaxRequestBytes,
		LogLevel:             "info",
		Strategy:             "greedy",
		OverlapPolicy:        "size-dependent",
		UnionWeight:          2,
		IntersectionWeight:   1,
		Store:                "memory",
		RunTTL:               24 * time.Hour,
		MaxRuns:              defaultMaxRuns,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{"store.run_ttl", yamlCfg.Store.RunTTL, &cfg.RunTTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.MaxRequestBytes > 0 {
		cfg.MaxRequestBytes = yamlCfg.MaxRequestBytes
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Engine.Strategy != "" {
		cfg.Strategy = yamlCfg.Engine.Strategy
	}
	if yamlCfg.Engine.OverlapPolicy != "" {
		cfg.OverlapPolicy = yamlCfg.Engine.OverlapPolicy
	}
	if yamlCfg.Engine.UnionWeight != nil {
		cfg.UnionWeight = *yamlCfg.Engine.UnionWeight
	}
	if yamlCfg.Engine.IntersectionWeight != nil {
		cfg.IntersectionWeight = *yamlCfg.Engine.IntersectionWeight
	}

	if yamlCfg.Store.Backend != "" {
		cfg.Store = yamlCfg.Store.Backend
	}
	if yamlCfg.Store.RedisURL != "" {
		cfg.RedisURL = yamlCfg.Store.RedisURL
	}
	if yamlCfg.Store.MaxRuns > 0 {
		cfg.MaxRuns = yamlCfg.Store.MaxRuns
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if strategy := env("STRATEGY"); strategy != "" {
		cfg.Strategy = strategy
	}
	if policy := env("OVERLAP_POLICY"); policy != "" {
		cfg.OverlapPolicy = policy
	}
	if store := env("STORE"); store != "" {
		cfg.Store = store
	}
	if url := env("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	setString(&cfg.Port, overrides.Port)
	setString(&cfg.LogLevel, overrides.LogLevel)
	setString(&cfg.Strategy, overrides.Strategy)
	setString(&cfg.OverlapPolicy, overrides.OverlapPolicy)
	setString(&cfg.Store, overrides.Store)
	setString(&cfg.RedisURL, overrides.RedisURL)

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

func setString(dst *string, value *string) {
	if value != nil && *value != "" {
		*dst = *value
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
