// Package config provides configuration management for ruleparser commands.
package config

import (
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
}

// ServerConfig holds configuration for the gRPC evaluation service.
type ServerConfig struct {
	Host            string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxRequestBytes int
	MetricsAddr     string // empty disables the /metrics listener
}

// LogConfig selects logger level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig locates rule set storage.
// URL schemes: sqlite:// or postgres://. Empty disables persistence.
type DatabaseConfig struct {
	URL string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            50061,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxRequestBytes: 4 * 1024 * 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns host:port for the gRPC listener.
func (c ServerConfig) Addr() string {
	return joinHostPort(c.Host, c.Port)
}
