// Package config loads service configuration from the environment, with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable for the server process.
type Config struct {
	HTTPAddr  string `env:"TUNEGRID_HTTP_ADDR,default=:3001" yaml:"http_addr"`
	LogLevel  string `env:"TUNEGRID_LOG_LEVEL,default=info" yaml:"log_level"`
	LogFormat string `env:"TUNEGRID_LOG_FORMAT,default=json" yaml:"log_format"`

	RedisAddr     string `env:"TUNEGRID_REDIS_ADDR,default=127.0.0.1:6379" yaml:"redis_addr"`
	RedisDB       int    `env:"TUNEGRID_REDIS_DB,default=0" yaml:"redis_db"`
	RedisPoolSize int    `env:"TUNEGRID_REDIS_POOL_SIZE,default=10" yaml:"redis_pool_size"`

	// AllowedOrigins is the CORS allow-list; multiple origins are separated
	// by semicolons in the environment variable.
	AllowedOrigins []string `env:"TUNEGRID_ALLOWED_ORIGINS,default=http://localhost:3000" yaml:"allowed_origins"`

	RateLimitPerSecond int `env:"TUNEGRID_RATE_LIMIT_RPS,default=50" yaml:"rate_limit_rps"`
	RateLimitBurst     int `env:"TUNEGRID_RATE_LIMIT_BURST,default=100" yaml:"rate_limit_burst"`

	// TransferMaxAttempts bounds the optimistic retry loop for wallet
	// transfers; TransferTimeout bounds its total elapsed time.
	TransferMaxAttempts int           `env:"TUNEGRID_TRANSFER_MAX_ATTEMPTS,default=8" yaml:"transfer_max_attempts"`
	TransferTimeout     time.Duration `env:"TUNEGRID_TRANSFER_TIMEOUT,default=3s" yaml:"transfer_timeout"`

	SeedDemo bool `env:"TUNEGRID_SEED_DEMO,default=false" yaml:"seed_demo"`
}

// Load reads configuration from the environment. If path is non-empty the
// YAML file at path is applied on top; keys absent from the file keep their
// environment values.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.validate()
	return &cfg, nil
}

// LoadOrDefault loads like Load but falls back to environment-only
// configuration when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	return Load(path)
}

// validate clamps values to acceptable bounds.
func (c *Config) validate() {
	if c.RedisPoolSize < 1 {
		c.RedisPoolSize = 1
	}
	if c.RateLimitPerSecond < 1 {
		c.RateLimitPerSecond = 1
	}
	if c.RateLimitBurst < c.RateLimitPerSecond {
		c.RateLimitBurst = c.RateLimitPerSecond
	}
	if c.TransferMaxAttempts < 1 {
		c.TransferMaxAttempts = 1
	}
	if c.TransferMaxAttempts > 64 {
		c.TransferMaxAttempts = 64
	}
	if c.TransferTimeout <= 0 {
		c.TransferTimeout = 3 * time.Second
	}
}
