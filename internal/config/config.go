package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultPort             = 8080
	DefaultAPIBaseURL       = "http://localhost:8000"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultSessionCacheSize = 256
	DefaultAPITimeout       = 10 * time.Second
	DefaultDevAPIPort       = 8000
)

// Config holds the web client configuration
type Config struct {
	Port             int           `validate:"required,min=1,max=65535"`
	APIBaseURL       string        `validate:"required,url"`
	LogLevel         string        `validate:"required,oneof=debug info warn error"`
	LogFormat        string        `validate:"required,oneof=json text"`
	SessionCacheSize int           `validate:"required,min=1"`
	APITimeout       time.Duration `validate:"required,gt=0"`
	DevAPIPort       int           `validate:"required,min=1,max=65535"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored but not required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: getEnv("SHELF_API_BASE_URL", DefaultAPIBaseURL),
		LogLevel:   getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:  getEnv("LOG_FORMAT", DefaultLogFormat),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.SessionCacheSize, err = getEnvInt("SESSION_CACHE_SIZE", DefaultSessionCacheSize); err != nil {
		return nil, err
	}
	if cfg.DevAPIPort, err = getEnvInt("DEVAPI_PORT", DefaultDevAPIPort); err != nil {
		return nil, err
	}

	timeout := getEnv("API_TIMEOUT", DefaultAPITimeout.String())
	if cfg.APITimeout, err = time.ParseDuration(timeout); err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT value: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr is the listen address for the web client.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}
