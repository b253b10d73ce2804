package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variables read by Load.
const EnvPrefix = "GATEHOUSE"

// legacyEnv maps configuration keys to the unprefixed variable names that earlier
// deployments of the service used. The prefixed name always takes precedence.
var legacyEnv = map[string][]string{
	"server.port":                      {"PORT"},
	"server.log_level":                 {"LOG_LEVEL"},
	"server.environment":               {"APP_ENV", "NODE_ENV"},
	"auth.jwt_secret":                  {"JWT_SECRET"},
	"alert.slack_webhook_url":          {"SLACK_WEBHOOK_URL"},
	"database.url":                     {"DATABASE_URL"},
	"database.host":                    {"DB_SERVER"},
	"database.port":                    {"DB_PORT"},
	"database.name":                    {"DB_DATABASE"},
	"database.user":                    {"DB_USER"},
	"database.password":                {"DB_PASSWORD"},
	"database.connect_timeout_seconds": {"DB_CONNECTION_TIMEOUT"},
	"database.query_timeout_seconds":   {"DB_REQUEST_TIMEOUT"},
}

// setDefaults registers the default value of every optional setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", EnvDevelopment)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.body_limit_bytes", 1<<20)

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_lifetime_minutes", 15)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 7*24*60)

	v.SetDefault("alert.slack_webhook_url", "")
	v.SetDefault("alert.queue_size", 64)
	v.SetDefault("alert.workers", 1)
	v.SetDefault("alert.timeout_seconds", 5)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "")
	v.SetDefault("database.connect_timeout_seconds", 30)
	v.SetDefault("database.query_timeout_seconds", 30)
	v.SetDefault("database.max_conns", 10)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first if present; it never
// overrides variables that are already set.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/gatehouse")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindLegacyEnv binds each key to its prefixed variable followed by its legacy names.
func bindLegacyEnv(v *viper.Viper) error {
	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, prefixed}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks struct constraints and production-only rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.checkProduction(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
