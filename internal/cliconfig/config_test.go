package cliconfig

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/pkg/feedview"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EntriesSource != feedview.SourceFile {
		t.Errorf("EntriesSource = %v, want file", cfg.EntriesSource)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Debounce != 100*time.Millisecond {
		t.Errorf("Debounce = %v, want 100ms", cfg.Debounce)
	}
	if cfg.Color != "auto" {
		t.Errorf("Color = %v, want auto", cfg.Color)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %v, want console", cfg.LogFormat)
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.EntriesFile = "/tmp/entries.json"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing entries file",
			mutate:  func(c *Config) { c.EntriesFile = "" },
			wantErr: true,
		},
		{
			name:    "memory source is library only",
			mutate:  func(c *Config) { c.EntriesSource = "memory" },
			wantErr: true,
		},
		{
			name: "postgres needs dsn",
			mutate: func(c *Config) {
				c.EntriesSource = "postgres"
			},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.EntriesSource = "POSTGRES"
				c.PostgresDSN = "postgres://localhost/feeds"
			},
			wantErr: false,
		},
		{
			name:    "redis status needs url",
			mutate:  func(c *Config) { c.StatusSource = "redis" },
			wantErr: true,
		},
		{
			name:    "http trigger needs sync url",
			mutate:  func(c *Config) { c.Trigger = "http" },
			wantErr: true,
		},
		{
			name:    "unknown trigger",
			mutate:  func(c *Config) { c.Trigger = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:    "invalid http timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = -1 },
			wantErr: true,
		},
		{
			name:    "invalid debounce",
			mutate:  func(c *Config) { c.Debounce = 0 },
			wantErr: true,
		},
		{
			name:    "negative limit",
			mutate:  func(c *Config) { c.Limit = -1 },
			wantErr: true,
		},
		{
			name:    "invalid color",
			mutate:  func(c *Config) { c.Color = "rainbow" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus_Mons" },
			wantErr: true,
		},
		{
			name:    "utc timezone",
			mutate:  func(c *Config) { c.Timezone = "UTC" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Normalizes(t *testing.T) {
	cfg := validConfig()
	cfg.StatusSource = "File"
	cfg.StatusFile = "/tmp/status.json"
	cfg.Trigger = "HTTP"
	cfg.SyncURL = "http://sync.local/"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.StatusSource != "file" {
		t.Errorf("StatusSource = %v, want file", cfg.StatusSource)
	}
	if cfg.Trigger != "http" {
		t.Errorf("Trigger = %v, want http", cfg.Trigger)
	}
	if cfg.SyncURL != "http://sync.local" {
		t.Errorf("SyncURL = %v, want http://sync.local", cfg.SyncURL)
	}
}

func TestConfig_Library(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "UTC"
	cfg.Limit = 25
	cfg.TriggerMaxRetries = 7

	lib, err := cfg.Library()
	if err != nil {
		t.Fatalf("Library failed: %v", err)
	}
	if lib.EntriesFile != "/tmp/entries.json" {
		t.Errorf("EntriesFile = %v", lib.EntriesFile)
	}
	if lib.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", lib.Location)
	}
	if lib.Limit != 25 || lib.TriggerMaxRetries != 7 {
		t.Errorf("Limit/TriggerMaxRetries = %d/%d, want 25/7", lib.Limit, lib.TriggerMaxRetries)
	}
	if lib.StatusSource != feedview.StatusNone {
		t.Errorf("StatusSource = %v, want none", lib.StatusSource)
	}
}

func TestConfig_Library_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Library()
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("Library() error = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_Masked(t *testing.T) {
	cfg := validConfig()
	cfg.AuthKey = "secret"
	cfg.PostgresDSN = "postgres://user:pass@db/feeds"

	masked := cfg.Masked()
	if strings.Contains(masked.AuthKey, "secret") || strings.Contains(masked.PostgresDSN, "pass") {
		t.Errorf("Masked() leaked credentials: %+v", masked)
	}
	if cfg.AuthKey != "secret" {
		t.Error("Masked() modified the receiver")
	}
}
