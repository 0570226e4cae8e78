package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the backend used when neither the config file nor the
// environment selects one.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// BaseURLEnv selects the backend base URL and wins over the config file.
const BaseURLEnv = "SMARTROSE_API_BASE_URL"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Storage    StorageConfig    `yaml:"storage"`
	Console    ConsoleConfig    `yaml:"console"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the console HTTP surface configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
}

// BackendConfig describes how to reach the SmartRose REST backend.
type BackendConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	Timeout         time.Duration `yaml:"-"`
	HTTPProxy       string        `yaml:"http_proxy"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	LoginRoute      string        `yaml:"login_route"`
}

// StorageConfig holds the local database used for the session token and
// push subscriptions.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // sqlite or postgres
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

// ConsoleConfig tunes page and modal behaviour.
type ConsoleConfig struct {
	SearchDebounceMillis int           `yaml:"search_debounce_ms"`
	SearchDebounce       time.Duration `yaml:"-"`
	SensorReadingLimit   int           `yaml:"sensor_reading_limit"`
	AuditLogLimit        int           `yaml:"audit_log_limit"`
}

// WatcherConfig controls the pending-approval poller.
type WatcherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path, then applies .env and
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found; using defaults", path)
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not read .env: %v", err)
	}
	if env := os.Getenv(BaseURLEnv); env != "" {
		cfg.Backend.BaseURL = env
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBaseURL
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 30
	}
	cfg.Backend.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	if cfg.Backend.LoginRoute == "" {
		cfg.Backend.LoginRoute = "/login"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = "smartrose-admin.db"
	}

	if cfg.Console.SearchDebounceMillis <= 0 {
		cfg.Console.SearchDebounceMillis = 300
	}
	cfg.Console.SearchDebounce = time.Duration(cfg.Console.SearchDebounceMillis) * time.Millisecond
	if cfg.Console.SensorReadingLimit <= 0 {
		cfg.Console.SensorReadingLimit = 50
	}
	if cfg.Console.AuditLogLimit <= 0 {
		cfg.Console.AuditLogLimit = 100
	}

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 60
	}
	cfg.Watcher.Interval = time.Duration(cfg.Watcher.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
