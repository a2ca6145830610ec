package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"painel/internal/log"
)

type Config struct {
	// HTTP Server
	Port           string
	LoginRateLimit int

	// Extract
	DataPath    string
	WatchData   bool
	PreviewRows int

	// Credential gate
	CredentialsFile string
	SessionTTL      time.Duration
	SessionMax      int

	// Logging
	LogLevel string
	LogFile  string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8501"),
		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),

		DataPath:    getEnv("DATA_PATH", "SEEU_DASH.csv"),
		WatchData:   getEnvBool("WATCH_DATA", true),
		PreviewRows: getEnvInt("PREVIEW_ROWS", 200),

		CredentialsFile: getEnv("CREDENTIALS_FILE", ""),
		SessionTTL:      getEnvDuration("SESSION_TTL", 8*time.Hour),
		SessionMax:      getEnvInt("SESSION_MAX", 1),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DataPath) == "" {
		errors = append(errors, "data path cannot be empty")
	}

	// The extract may appear after startup, but its directory must exist to be watched.
	if c.WatchData && c.DataPath != "" {
		dir := filepath.Dir(c.DataPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory '%s' does not exist: cannot watch extract", dir))
		}
	}

	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("credentials file does not exist: %s", c.CredentialsFile))
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 7 days", c.SessionTTL))
	}

	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}

	if c.PreviewRows < 0 {
		errors = append(errors, fmt.Sprintf("invalid preview rows %d: must not be negative", c.PreviewRows))
	}

	if c.LoginRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate limit %d: must be at least 1 per minute", c.LoginRateLimit))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
