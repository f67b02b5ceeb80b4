// Package config loads extractor configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the settings of the extraction pipeline. Credentials come
// from the environment only and never from config files.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogPretty bool   `yaml:"log_pretty" env:"LOG_PRETTY" env-default:"false"`

	PublicKey  string `yaml:"-" env:"API_PUBLIC_KEY"`
	PrivateKey string `yaml:"-" env:"API_PRIVATE_KEY"`

	BaseURL        string        `yaml:"base_url" env:"MARVEL_BASE_URL" env-default:"https://gateway.marvel.com"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"30s"`

	ThrottleDelay    time.Duration `yaml:"throttle_delay" env:"THROTTLE_DELAY" env-default:"2s"`
	RetryInterval    time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL" env-default:"2s"`
	RetryMaxAttempts int           `yaml:"retry_max_attempts" env:"RETRY_MAX_ATTEMPTS" env-default:"5"`

	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"data"`

	RedisAddr string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"1h"`

	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`

	NATSAddr string `yaml:"nats_addr" env:"NATS_ADDR"`

	MetricsPort   int `yaml:"metrics_port" env:"METRICS_PORT" env-default:"0"`
	DashboardPort int `yaml:"dashboard_port" env:"DASHBOARD_PORT" env-default:"8080"`
}

// Load reads configuration from the given YAML file plus the environment.
// An empty path reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// MustLoad is Load for program startup; it exits on failure.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}
