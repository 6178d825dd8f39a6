package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKBOARD_SERVER_PORT.
const EnvPrefix = "TASKBOARD"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.log_file":                 "",
	"server.cors_allowed_origins":     []string{"http://localhost:5173"},
	"server.shutdown_timeout_seconds": 10,
	"database.driver":                 DriverPostgres,
	"database.url":                    "",
	"database.mongo_database":         "taskboard",
	"auth.jwt_secret":                 "",
	"auth.token_lifetime_minutes":     7 * 24 * 60,
	"auth.admin_join_code":            "",
	"auth.bcrypt_cost":                10,
	"breaker.max_requests":            1,
	"breaker.interval_seconds":        60,
	"breaker.timeout_seconds":         30,
	"breaker.consecutive_failures":    3,
}

// Load reads configuration from, in increasing precedence: built-in defaults,
// an optional config.yaml in the working directory, an optional .env file and
// TASKBOARD_* environment variables. The result is validated before return.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for config.yaml and .env.
func LoadFrom(dir string) (*Config, error) {
	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(dir + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
