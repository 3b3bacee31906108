// Package config loads settings for the service and the CLI from LISTWISE_*
// environment variables, after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "LISTWISE_"

// Server holds configuration for cmd/listwised.
type Server struct {
	Port       string
	DBPath     string
	LogLevel   string
	LogFormat  string
	JWTSecret  string
	SessionTTL time.Duration
}

// Client holds configuration for cmd/listwise.
type Client struct {
	APIURL    string
	PrefsDir  string
	LogLevel  string
	LogFormat string
	ErrorTTL  time.Duration
}

// LoadServer reads the service configuration. LISTWISE_JWT_SECRET is required.
func LoadServer() (*Server, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	ttl, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Server{
		Port:       getEnv("PORT", "8080"),
		DBPath:     getEnv("DB_PATH", "listwise.db"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: ttl,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Server) Validate() error {
	if c.JWTSecret == "" {
		return errors.New(envPrefix + "JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New(envPrefix + "JWT_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New(envPrefix + "SESSION_TTL must be positive")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

// LoadClient reads the CLI configuration.
func LoadClient() (*Client, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	errorTTL, err := getDuration("ERROR_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	prefsDir := getEnv("PREFS_DIR", "")
	if prefsDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		prefsDir = filepath.Join(base, "listwise")
	}

	return &Client{
		APIURL:    strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		PrefsDir:  prefsDir,
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		ErrorTTL:  errorTTL,
	}, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return d, nil
}
