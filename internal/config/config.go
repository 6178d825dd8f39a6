package config

import "time"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Breaker  BreakerConfig  `mapstructure:"breaker" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a rotated copy of the JSON log stream.
	LogFile            string   `mapstructure:"log_file"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"dive,required"`
	ShutdownTimeoutSec int      `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout is the grace period given to in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// DatabaseConfig selects and configures the task/user store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo memory"`
	// URL is a postgres DSN or a mongodb:// URI depending on Driver.
	URL           string `mapstructure:"url" validate:"required_unless=Driver memory"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_if=Driver mongo"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// AdminJoinCode grants the admin role at sign-up when supplied. Empty disables admin sign-up.
	AdminJoinCode string `mapstructure:"admin_join_code"`
	BcryptCost    int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// TokenLifetime returns the access token validity period.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// BreakerConfig tunes the circuit breakers wrapped around the stores.
type BreakerConfig struct {
	MaxRequests         uint32 `mapstructure:"max_requests" validate:"required,gt=0"`
	IntervalSeconds     int    `mapstructure:"interval_seconds" validate:"gte=0"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	ConsecutiveFailures uint32 `mapstructure:"consecutive_failures" validate:"required,gt=0"`
}

// Interval is the cyclic period in which closed-state counts are cleared.
func (c BreakerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Timeout is how long the breaker stays open before probing again.
func (c BreakerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
