package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (RP_SERVER_PORT, ...).
const EnvPrefix = "RP"

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned struct.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("server.max_request_bytes", d.Server.MaxRequestBytes)
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("database.url", "")

	// Bind environment variables with RP_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Security check: database credentials belong in the environment
		if err := validateNoSecretsInFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxRequestBytes: v.GetInt("server.max_request_bytes"),
			MetricsAddr:     v.GetString("server.metrics_addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks port range and positive limits.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxRequestBytes <= 0 {
		return fmt.Errorf("max_request_bytes must be positive, got %d", cfg.Server.MaxRequestBytes)
	}
	if cfg.Server.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.MetricsAddr); err != nil {
			return fmt.Errorf("metrics_addr must be host:port, got %q", cfg.Server.MetricsAddr)
		}
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

// validateNoSecretsInFile enforces environment-only database passwords (12-factor principle).
// Reads the file on its own so environment overrides are not mistaken for file content.
func validateNoSecretsInFile(configPath string) error {
	f := viper.New()
	f.SetConfigFile(configPath)
	if err := f.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	raw := f.GetString("database.url")
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid database.url in config file: %w", err)
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		return fmt.Errorf("database passwords not allowed in config files (use %s_DATABASE_URL environment variable)", EnvPrefix)
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
