package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPredictionAPIURL is the loopback address of a locally running model server
const DefaultPredictionAPIURL = "http://127.0.0.1:8000"

// Config holds all configuration for the application.
// It is resolved once at startup and treated as read-only afterwards.
type Config struct {
	Server     ServerConfig
	Prediction PredictionConfig
	Session    SessionConfig
	PostgreSQL PostgreSQLConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// PredictionConfig holds the remote prediction service settings
type PredictionConfig struct {
	APIURL string
	// Timeout of zero leaves the call to the transport's own defaults
	Timeout time.Duration
}

// SessionConfig holds browser session settings for the form pages
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// PostgreSQLConfig holds the optional prediction audit log database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Prediction: PredictionConfig{
			APIURL:  strings.TrimRight(getEnv("PREDICTION_API_URL", getEnv("API_URL", DefaultPredictionAPIURL)), "/"),
			Timeout: getEnvAsDuration("PREDICTION_TIMEOUT", 0),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "pp_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			Secure:     getEnvAsBool("SESSION_SECURE", false),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "house_prices"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 5),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
	}
	cfg.PostgreSQL.Enabled = cfg.PostgreSQL.DSN != "" || os.Getenv("PG_HOST") != ""

	if err := validateAPIURL(cfg.Prediction.APIURL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// NewPredictionConfig normalises and validates a prediction service address
func NewPredictionConfig(apiURL string, timeout time.Duration) (*PredictionConfig, error) {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if err := validateAPIURL(apiURL); err != nil {
		return nil, err
	}
	return &PredictionConfig{APIURL: apiURL, Timeout: timeout}, nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid PREDICTION_API_URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid PREDICTION_API_URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid PREDICTION_API_URL %q: missing host", raw)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("30s", "5m") or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value < 0 {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
