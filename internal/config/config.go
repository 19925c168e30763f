// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Errors returned when required database configuration cannot be resolved.
var (
	ErrMissingMongoURI = errors.New("missing MongoDB connection string: set MONGODB_URI (or MONGO_URL)")
	ErrMissingDBName   = errors.New("missing database name: set MONGODB_DB_NAME or include it in the Mongo URI path")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (MongoDB). MongoURL and MongoDBNameOld are legacy aliases
	// kept for older deployments; resolution precedence is implemented by
	// MongoURI() and DatabaseName().
	MongoDBURI     string `env:"MONGODB_URI"`
	MongoURL       string `env:"MONGO_URL"`
	MongoDBName    string `env:"MONGODB_DB_NAME"`
	MongoDBNameOld string `env:"MONGO_DB_NAME"`

	// Rate limiting backend (Redis). Optional: rate limiting is disabled
	// when unset.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MongoURI resolves the MongoDB connection string.
// Precedence: MONGODB_URI, then the legacy MONGO_URL alias.
func (c *Config) MongoURI() (string, error) {
	if c.MongoDBURI != "" {
		return c.MongoDBURI, nil
	}
	if c.MongoURL != "" {
		return c.MongoURL, nil
	}
	return "", ErrMissingMongoURI
}

// DatabaseName resolves the logical database name.
// Precedence: MONGODB_DB_NAME, the legacy MONGO_DB_NAME alias, then the
// path component of the connection string.
func (c *Config) DatabaseName() (string, error) {
	if c.MongoDBName != "" {
		return c.MongoDBName, nil
	}
	if c.MongoDBNameOld != "" {
		return c.MongoDBNameOld, nil
	}

	uri, err := c.MongoURI()
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", ErrMissingDBName
	}

	name := strings.TrimPrefix(parsed.Path, "/")
	if name == "" {
		return "", ErrMissingDBName
	}
	return name, nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if the connection string or database name cannot be
// resolved, so the process fails at startup rather than serving without
// a database.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.MongoURI(); err != nil {
		return nil, err
	}
	if _, err := cfg.DatabaseName(); err != nil {
		return nil, err
	}

	return cfg, nil
}
