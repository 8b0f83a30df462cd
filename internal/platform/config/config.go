// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

// DefaultGreetingMessage is served when HELLO_MESSAGE is unset. A variable
// set to the empty string is served as is.
const DefaultGreetingMessage = "Hello OpenShift"

// Config holds all configuration for the greeting service.
type Config struct {
	// Greeting
	GreetingMessage string `envconfig:"HELLO_MESSAGE" default:"Hello OpenShift"`

	// HTTP server
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// EnvFile is the env file consulted before the environment is read. It
	// comes from ENV_FILE (default .env) and is set by Load, not by envconfig.
	EnvFile string `ignored:"true"`

	// Observability
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the optional env file, then the environment, and validates the
// result. Variables already set in the environment take precedence over the
// file.
func Load() (*Config, error) {
	path := envFile()
	if err := loadEnvFile(path); err != nil {
		return nil, err
	}

	cfg := Config{EnvFile: path}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func envFile() string {
	if v, ok := os.LookupEnv("ENV_FILE"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return ".env"
}

// loadEnvFile populates unset variables from path. A missing file is fine.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
