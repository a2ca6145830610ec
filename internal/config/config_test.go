package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:           "8501",
		LoginRateLimit: 10,
		DataPath:       "SEEU_DASH.csv",
		WatchData:      false,
		PreviewRows:    200,
		SessionTTL:     8 * time.Hour,
		SessionMax:     1,
		LogLevel:       "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "empty data path",
			mutate:      func(c *Config) { c.DataPath = "  " },
			wantErr:     true,
			errorString: "data path cannot be empty",
		},
		{
			name: "watched data directory missing",
			mutate: func(c *Config) {
				c.WatchData = true
				c.DataPath = "/non/existent/dir/SEEU_DASH.csv"
			},
			wantErr:     true,
			errorString: "data directory '/non/existent/dir' does not exist: cannot watch extract",
		},
		{
			name: "unwatched data directory may be missing",
			mutate: func(c *Config) {
				c.DataPath = "/non/existent/dir/SEEU_DASH.csv"
			},
			wantErr: false,
		},
		{
			name:        "credentials file missing",
			mutate:      func(c *Config) { c.CredentialsFile = "/non/existent/users.yaml" },
			wantErr:     true,
			errorString: "credentials file does not exist: /non/existent/users.yaml",
		},
		{
			name:        "session TTL too short",
			mutate:      func(c *Config) { c.SessionTTL = 30 * time.Second },
			wantErr:     true,
			errorString: "invalid session TTL 30s: must be at least 1 minute",
		},
		{
			name:        "session TTL too long",
			mutate:      func(c *Config) { c.SessionTTL = 8 * 24 * time.Hour },
			wantErr:     true,
			errorString: "invalid session TTL 192h0m0s: must be at most 7 days",
		},
		{
			name:        "session max zero",
			mutate:      func(c *Config) { c.SessionMax = 0 },
			wantErr:     true,
			errorString: "invalid session max 0: must be at least 1",
		},
		{
			name:        "negative preview rows",
			mutate:      func(c *Config) { c.PreviewRows = -1 },
			wantErr:     true,
			errorString: "invalid preview rows -1: must not be negative",
		},
		{
			name:        "login rate limit zero",
			mutate:      func(c *Config) { c.LoginRateLimit = 0 },
			wantErr:     true,
			errorString: "invalid login rate limit 0: must be at least 1 per minute",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose': must be one of [debug info warn error]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Config.Validate() error = %v, want error containing %v", err, tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.SessionMax = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration validation failed:\n- ") {
		t.Errorf("unexpected prefix: %q", msg)
	}
	if got := strings.Count(msg, "\n- "); got != 3 {
		t.Errorf("expected 3 aggregated errors, got %d in %q", got, msg)
	}
}

func TestConfig_ValidateWithFiles(t *testing.T) {
	tmpDir := t.TempDir()

	credentials := filepath.Join(tmpDir, "users.yaml")
	if err := os.WriteFile(credentials, []byte("users: []\n"), 0644); err != nil {
		t.Fatalf("Failed to create test credentials file: %v", err)
	}

	cfg := validConfig()
	cfg.CredentialsFile = credentials
	cfg.WatchData = true
	cfg.DataPath = filepath.Join(tmpDir, "SEEU_DASH.csv")

	if err := cfg.Validate(); err != nil {
		t.Errorf("Config.Validate() unexpected error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{
			"PORT", "DATA_PATH", "CREDENTIALS_FILE", "SESSION_TTL", "SESSION_MAX",
			"WATCH_DATA", "PREVIEW_ROWS", "LOGIN_RATE_LIMIT", "LOG_LEVEL", "LOG_FILE",
		} {
			t.Setenv(key, "")
		}

		cfg := Load()
		if cfg.Port != "8501" {
			t.Errorf("Port = %q, want 8501", cfg.Port)
		}
		if cfg.DataPath != "SEEU_DASH.csv" {
			t.Errorf("DataPath = %q, want SEEU_DASH.csv", cfg.DataPath)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Errorf("SessionTTL = %v, want 8h", cfg.SessionTTL)
		}
		if cfg.SessionMax != 1 {
			t.Errorf("SessionMax = %d, want 1", cfg.SessionMax)
		}
		if !cfg.WatchData {
			t.Error("WatchData should default to true")
		}
		if cfg.PreviewRows != 200 {
			t.Errorf("PreviewRows = %d, want 200", cfg.PreviewRows)
		}
		if cfg.LoginRateLimit != 10 {
			t.Errorf("LoginRateLimit = %d, want 10", cfg.LoginRateLimit)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.Addr() != ":8501" {
			t.Errorf("Addr() = %q, want :8501", cfg.Addr())
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("DATA_PATH", "/data/extract.csv")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("SESSION_MAX", "4")
		t.Setenv("WATCH_DATA", "false")
		t.Setenv("PREVIEW_ROWS", "50")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()
		if cfg.Port != "9000" || cfg.DataPath != "/data/extract.csv" {
			t.Errorf("unexpected port/path: %q %q", cfg.Port, cfg.DataPath)
		}
		if cfg.SessionTTL != 30*time.Minute || cfg.SessionMax != 4 {
			t.Errorf("unexpected session settings: %v %d", cfg.SessionTTL, cfg.SessionMax)
		}
		if cfg.WatchData {
			t.Error("WatchData should be false")
		}
		if cfg.PreviewRows != 50 || cfg.LogLevel != "debug" {
			t.Errorf("unexpected preview/log: %d %q", cfg.PreviewRows, cfg.LogLevel)
		}
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "forever")
		t.Setenv("PREVIEW_ROWS", "many")
		t.Setenv("WATCH_DATA", "maybe")

		cfg := Load()
		if cfg.SessionTTL != 8*time.Hour {
			t.Errorf("SessionTTL = %v, want 8h", cfg.SessionTTL)
		}
		if cfg.PreviewRows != 200 {
			t.Errorf("PreviewRows = %d, want 200", cfg.PreviewRows)
		}
		if !cfg.WatchData {
			t.Error("WatchData should fall back to true")
		}
	})
}
