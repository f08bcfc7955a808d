// Package config provides configuration management for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is built once at startup and handed to the constructors that need it
type Config struct {
	Port    string        `yaml:"port"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Logging LoggingConfig `yaml:"logging"`
	CORS    CORSConfig    `yaml:"cors"`
	Events  EventsConfig  `yaml:"events"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory|redis|mongo
	// LockTTL bounds how long a slot lock may be held before it is considered stale
	LockTTL time.Duration `yaml:"lockTTL"`
}

// RedisConfig holds Redis/Valkey configuration
type RedisConfig struct {
	// URI is prioritized if provided, otherwise individual connection parameters are used
	URI       string `yaml:"uri"`
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LoggingConfig controls the slog setup
type LoggingConfig struct {
	Env     string `yaml:"env"`     // dev|stage|prod
	Service string `yaml:"service"` // roombook
	Version string `yaml:"version"`
	Backend string `yaml:"backend"` // std|zap
	Debug   bool   `yaml:"debug"`
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// EventsConfig controls the server-sent event streams
type EventsConfig struct {
	// Replay sends the stream history to newly connected subscribers
	Replay bool `yaml:"replay"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port: "5000",
		Store: StoreConfig{
			Backend: BackendMemory,
			LockTTL: 10 * time.Second,
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      "6379",
			KeyPrefix: "roombook:",
		},
		Mongo: MongoConfig{
			Database: "roombook",
		},
		Logging: LoggingConfig{
			Env:     "dev",
			Service: "roombook",
			Version: "v0.1.0",
			Backend: "", // std in dev, zap elsewhere
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file at
// CONFIG_PATH and environment variables, in that order of precedence
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)

	c.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", c.Store.Backend))
	c.Store.LockTTL = getEnvDuration("LOCK_TTL", c.Store.LockTTL)

	c.Redis.URI = getEnv("REDIS_URI", c.Redis.URI)
	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Username = getEnv("REDIS_USERNAME", c.Redis.Username)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)

	c.Logging.Env = getEnv("APP_ENV", c.Logging.Env)
	c.Logging.Service = getEnv("LOG_SERVICE", c.Logging.Service)
	c.Logging.Version = getEnv("APP_VERSION", c.Logging.Version)
	c.Logging.Backend = getEnv("LOG_BACKEND", c.Logging.Backend)
	c.Logging.Debug = getEnvBool("LOG_DEBUG", c.Logging.Debug)

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}

	c.Events.Replay = getEnvBool("EVENTS_REPLAY", c.Events.Replay)
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Store.LockTTL <= 0 {
		return errors.New("store.lockTTL must be positive")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URI == "" && c.Redis.Host == "" {
			return errors.New("redis.uri or redis.host is required for the redis backend")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required for the mongo backend")
		}
		if c.Mongo.Database == "" {
			return errors.New("mongo.database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	return nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
