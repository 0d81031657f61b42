// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and UDLCOACH_* environment variables, in that order.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "UDLCOACH_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Store  StoreConfig  `yaml:"store" envPrefix:"STORE_"`
	Redis  RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
	OpenAI OpenAIConfig `yaml:"openai" envPrefix:"OPENAI_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`

	// EncryptionKey enables field encryption at rest: 64 hex characters (AES-256).
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`

	MaxInputSize  int   `yaml:"max_input_size" env:"MAX_INPUT_SIZE"`
	MaxUploadSize int64 `yaml:"max_upload_size" env:"MAX_UPLOAD_SIZE"`

	MetricsEnabled bool `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	// Path is the directory of the file store or the database file of the sqlite store.
	Path string `yaml:"path" env:"PATH"`
	// Cache loads every record into memory at start and writes through to
	// the file and sqlite drivers. Other drivers ignore it.
	Cache bool `yaml:"cache" env:"CACHE"`
}

// Preloaded reports whether the driver runs behind the in-memory cache.
// Redis is shared with other processes and memory is already resident.
func (s StoreConfig) Preloaded() bool {
	return s.Cache && (s.Driver == DriverFile || s.Driver == DriverSQLite)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
	// TTL expires idle records. Zero keeps them until an explicit reset.
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// Lock enables the distributed per-session lock.
	Lock    bool          `yaml:"lock" env:"LOCK"`
	LockTTL time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Model       string        `yaml:"model" env:"MODEL"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Temperature float32       `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Cache:  true,
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "udlcoach:",
			LockTTL: 2 * time.Minute,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-3.5-turbo",
			Timeout:     60 * time.Second,
			Temperature: 0.7,
			MaxTokens:   1200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MaxInputSize:  64 * 1024,
		MaxUploadSize: 10 << 20,
	}
}

// Load builds the configuration. path may be empty; a named file must exist.
// Variables from a .env file in the working directory never override the
// real environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// The conventional variable is honoured when the namespaced one is unset.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent values.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		invalid("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		invalid("server.shutdown_timeout must be positive")
	}

	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			invalid("redis.addr is required by the redis store")
		}
	default:
		invalid("unknown store.driver %q", c.Store.Driver)
	}
	if c.Redis.Lock && strings.TrimSpace(c.Redis.Addr) == "" {
		invalid("redis.addr is required by redis.lock")
	}
	if c.Redis.TTL < 0 || c.Redis.LockTTL < 0 {
		invalid("redis ttl values cannot be negative")
	}

	if c.EncryptionKey != "" {
		if _, err := c.EncryptionKeyBytes(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		invalid("openai.temperature %.2f out of range [0,2]", c.OpenAI.Temperature)
	}
	if c.OpenAI.MaxTokens <= 0 {
		invalid("openai.max_tokens must be positive")
	}
	if c.OpenAI.Timeout <= 0 {
		invalid("openai.timeout must be positive")
	}

	if c.MaxInputSize <= 0 {
		invalid("max_input_size must be positive")
	}
	if c.MaxUploadSize <= 0 {
		invalid("max_upload_size must be positive")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		invalid("log.format %q must be text or json", c.Log.Format)
	}

	return errors.Join(errs...)
}

// EncryptionKeyBytes decodes the encryption key. It returns nil when encryption is off.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption_key is not hex: %v", ErrInvalidConfig, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption_key must decode to 32 bytes, got %d", ErrInvalidConfig, len(key))
	}
	return key, nil
}
