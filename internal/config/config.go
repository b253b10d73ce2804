package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultJWTSecret is the placeholder signing secret used when none is configured.
// It is accepted outside production so the service can start locally, and rejected
// by Validate when the environment is "production".
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Supported values for ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Alert    AlertConfig    `mapstructure:"alert"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"        validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level"   validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`

	// ShutdownTimeoutSeconds bounds graceful shutdown of in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`

	// BodyLimitBytes caps the size of JSON request bodies.
	BodyLimitBytes int64 `mapstructure:"body_limit_bytes" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// The database is optional: when neither URL nor the discrete connection fields
// are set, the service starts without a connection pool.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"      validate:"omitempty,url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"gte=0,lt=65536"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	ConnectTimeoutSeconds int   `mapstructure:"connect_timeout_seconds" validate:"gte=0"`
	QueryTimeoutSeconds   int   `mapstructure:"query_timeout_seconds"   validate:"gte=0"`
	MaxConns              int32 `mapstructure:"max_conns"               validate:"gte=0"`
}

// Configured reports whether enough connection information is present to attempt
// a connection.
func (c DatabaseConfig) Configured() bool {
	if c.URL != "" {
		return true
	}
	return c.Name != "" && c.User != "" && c.Password != ""
}

// DSN returns the connection string for the database. URL wins over the discrete
// fields when both are set.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + c.Name,
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeoutSeconds > 0 {
		q.Set("connect_timeout", strconv.Itoa(c.ConnectTimeoutSeconds))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the lifetime of access tokens.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the lifetime of refresh tokens.
	// It must outlive access tokens.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
}

// AlertConfig controls outbound notifications for server errors.
// An empty SlackWebhookURL disables alerting.
type AlertConfig struct {
	SlackWebhookURL string `mapstructure:"slack_webhook_url" validate:"omitempty,url"`
	QueueSize       int    `mapstructure:"queue_size"        validate:"gt=0"`
	Workers         int    `mapstructure:"workers"           validate:"gt=0,lte=16"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"   validate:"gt=0"`
}

// Enabled reports whether an alert destination is configured.
func (c AlertConfig) Enabled() bool {
	return c.SlackWebhookURL != ""
}

// checkProduction applies rules that only hold in production deployments.
func (c *Config) checkProduction() error {
	if c.Server.Environment != EnvProduction {
		return nil
	}
	if c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be overridden in production")
	}
	return nil
}
