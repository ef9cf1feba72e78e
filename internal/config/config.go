package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Defaults applied before environment overrides.
const (
	DefaultPort         = 3000
	DefaultMetricsPort  = 9091
	DefaultTimezone     = "America/Denver"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultQueryTimeout = 25 * time.Second
)

// Config holds the process configuration. All values come from the
// environment; there is no config file beyond an optional .env.
type Config struct {
	MongoURI       string
	Port           int
	MetricsPort    int // 0 disables the metrics listener
	Timezone       string
	Location       *time.Location
	DebugPivot     bool
	LogLevel       string
	LogFormat      string
	CacheTTL       time.Duration
	QueryTimeout   time.Duration
	AllowedOrigins []string
}

// Load reads configuration from the environment, applying defaults and
// validating the result. A .env file in the working directory is honored
// for development; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded configuration from .env in current directory")
	}

	cfg := &Config{
		Port:           DefaultPort,
		MetricsPort:    DefaultMetricsPort,
		Timezone:       DefaultTimezone,
		LogLevel:       "info",
		LogFormat:      "auto",
		CacheTTL:       DefaultCacheTTL,
		QueryTimeout:   DefaultQueryTimeout,
		AllowedOrigins: []string{"*"},
	}

	cfg.MongoURI = os.Getenv("MONGO_URI")

	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 && port < 65536 {
			cfg.Port = port
		} else {
			log.Warn().Str("value", val).Msg("Invalid PORT; using default")
		}
	}
	if val := os.Getenv("METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port >= 0 && port < 65536 {
			cfg.MetricsPort = port
		} else {
			log.Warn().Str("value", val).Msg("Invalid METRICS_PORT; using default")
		}
	}
	if val := os.Getenv("TZ"); val != "" {
		cfg.Timezone = val
	}
	if val := os.Getenv("DEBUG_PIVOT"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.DebugPivot = enabled
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil && ttl > 0 {
			cfg.CacheTTL = ttl
		} else {
			log.Warn().Str("value", val).Msg("Invalid CACHE_TTL; using default")
		}
	}
	if val := os.Getenv("QUERY_TIMEOUT"); val != "" {
		if timeout, err := time.ParseDuration(val); err == nil && timeout > 0 {
			cfg.QueryTimeout = timeout
		} else {
			log.Warn().Str("value", val).Msg("Invalid QUERY_TIMEOUT; using default")
		}
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.AllowedOrigins = origins
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TZ %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// RedactedMongoURI returns the connection string with any credentials masked,
// safe for the startup log line.
func (c *Config) RedactedMongoURI() string {
	parsed, err := url.Parse(c.MongoURI)
	if err != nil {
		return "(unparseable)"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}
