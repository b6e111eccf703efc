// Package config loads runtime settings from the environment, optionally seeded
// from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Path         string
	Timeout      time.Duration
	MaxOpenConns int
	ResetOnStart bool
}

type Config struct {
	Host     string
	Port     string
	Database DatabaseConfig

	// StrictMode selects the strict telemetry policy: all fields required and
	// consent enforced. The default permissive policy fills in defaults.
	StrictMode bool
	// RequireOldPassword makes /forgot_password verify the current password.
	RequireOldPassword bool

	AllowedOrigins []string
	MaxBodyBytes   int64
	// WriteTimeout bounds how long one response, downloads included, may take.
	WriteTimeout time.Duration
	LogLevel       string
	GinMode        string
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Path:         GetEnvAsString("DB_PATH", "auth_data.db"),
		Timeout:      GetEnvAsDuration("DB_TIMEOUT", 10*time.Second),
		MaxOpenConns: GetEnvAsInt("DB_MAX_OPEN_CONNS", 1),
		ResetOnStart: GetEnvAsBool("DB_RESET_ON_START", false),
	}
}

// Load reads .env (if present) and builds a Config from the environment.
// Variables already set in the process environment take precedence over .env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Host:               GetEnvAsString("HOST", "0.0.0.0"),
		Port:               GetEnvAsString("PORT", "5000"),
		Database:           LoadDatabaseConfig(),
		StrictMode:         GetEnvAsBool("STRICT_MODE", false),
		RequireOldPassword: GetEnvAsBool("REQUIRE_OLD_PASSWORD", false),
		AllowedOrigins:     GetEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:       GetEnvAsInt64("MAX_BODY_BYTES", 1<<20),
		WriteTimeout:       GetEnvAsDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		LogLevel:           GetEnvAsString("LOG_LEVEL", "info"),
		GinMode:            GetEnvAsString("GIN_MODE", "release"),
	}

	if cfg.Database.MaxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.Timeout <= 0 {
		return nil, fmt.Errorf("DB_TIMEOUT must be positive, got %s", cfg.Database.Timeout)
	}
	if cfg.WriteTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT must be positive, got %s", cfg.WriteTimeout)
	}
	return cfg, nil
}
