package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies valid env vars",
			envVars: map[string]string{
				"FEEDVIEW_ENTRIES_FILE":  "/env/entries.json",
				"FEEDVIEW_STATUS_SOURCE": "redis",
				"FEEDVIEW_REDIS_URL":     "redis://env:6379",
				"FEEDVIEW_HTTP_TIMEOUT":  "5s",
				"FEEDVIEW_QUEUE_SIZE":    "128",
				"FEEDVIEW_ONCE":          "true",
			},
			changed: map[string]bool{},
			expected: Config{
				EntriesFile:  "/env/entries.json",
				StatusSource: "redis",
				RedisURL:     "redis://env:6379",
				HTTPTimeout:  5 * time.Second,
				QueueSize:    128,
				Once:         true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"FEEDVIEW_ENTRIES_FILE": "/env/entries.json",
				"FEEDVIEW_SYNC_URL":     "http://env",
			},
			changed: map[string]bool{"entries-file": true},
			initial: Config{EntriesFile: "/flag/entries.json"},
			expected: Config{
				EntriesFile: "/flag/entries.json",
				SyncURL:     "http://env",
			},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"FEEDVIEW_DEBOUNCE": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"FEEDVIEW_LIMIT": "ten"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "handles bool '1' as true",
			envVars:  map[string]string{"FEEDVIEW_NO_BROWSER": "1"},
			changed:  map[string]bool{},
			expected: Config{NoBrowser: true},
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"FEEDVIEW_NO_BROWSER": "false"},
			changed:  map[string]bool{},
			initial:  Config{NoBrowser: true},
			expected: Config{NoBrowser: false},
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				"FEEDVIEW_ENTRIES_SOURCE":        "postgres",
				"FEEDVIEW_ENTRIES_FILE":          "/e.json",
				"FEEDVIEW_POSTGRES_DSN":          "postgres://db/feeds",
				"FEEDVIEW_POSTGRES_CHANNEL":      "entries",
				"FEEDVIEW_STATUS_SOURCE":         "file",
				"FEEDVIEW_STATUS_FILE":           "/s.json",
				"FEEDVIEW_REDIS_URL":             "redis://r",
				"FEEDVIEW_REDIS_STATUS_KEY":      "k",
				"FEEDVIEW_REDIS_STATUS_CHANNEL":  "sc",
				"FEEDVIEW_REDIS_TRIGGER_CHANNEL": "tc",
				"FEEDVIEW_TRIGGER":               "http",
				"FEEDVIEW_SYNC_URL":              "http://sync",
				"FEEDVIEW_AUTH_KEY":              "secret",
				"FEEDVIEW_HTTP_TIMEOUT":          "30s",
				"FEEDVIEW_TRIGGER_MAX_RETRIES":   "4",
				"FEEDVIEW_DEBOUNCE":              "2s",
				"FEEDVIEW_QUEUE_SIZE":            "10",
				"FEEDVIEW_LIMIT":                 "20",
				"FEEDVIEW_TIME_FORMAT":           "Jan 2",
				"FEEDVIEW_TIMEZONE":              "UTC",
				"FEEDVIEW_COLOR":                 "always",
				"FEEDVIEW_METRICS_ADDR":          ":9000",
				"FEEDVIEW_LOG_LEVEL":             "warn",
				"FEEDVIEW_LOG_FORMAT":            "json",
				"FEEDVIEW_NO_BROWSER":            "true",
				"FEEDVIEW_ONCE":                  "1",
			},
			changed: map[string]bool{},
			expected: Config{
				EntriesSource:       "postgres",
				EntriesFile:         "/e.json",
				PostgresDSN:         "postgres://db/feeds",
				PostgresChannel:     "entries",
				StatusSource:        "file",
				StatusFile:          "/s.json",
				RedisURL:            "redis://r",
				RedisStatusKey:      "k",
				RedisStatusChannel:  "sc",
				RedisTriggerChannel: "tc",
				Trigger:             "http",
				SyncURL:             "http://sync",
				AuthKey:             "secret",
				HTTPTimeout:         30 * time.Second,
				TriggerMaxRetries:   4,
				Debounce:            2 * time.Second,
				QueueSize:           10,
				Limit:               20,
				TimeFormat:          "Jan 2",
				Timezone:            "UTC",
				Color:               "always",
				MetricsAddr:         ":9000",
				LogLevel:            "warn",
				LogFormat:           "json",
				NoBrowser:           true,
				Once:                true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("config = %+v\nwant %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		EntriesFile: "/file/entries.json",
		StatusFile:  "/file/status.json",
		NoBrowser:   &trueVal,
	}

	t.Setenv("FEEDVIEW_ENTRIES_FILE", "/env/entries.json")
	t.Setenv("FEEDVIEW_STATUS_FILE", "/env/status.json")
	t.Setenv("FEEDVIEW_SYNC_URL", "http://env")

	changed := map[string]bool{
		"entries-file": true,
	}

	cfg := Config{
		EntriesFile: "/cli/entries.json",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.EntriesFile != "/cli/entries.json" {
		t.Errorf("EntriesFile = %v, want /cli/entries.json (CLI should win)", cfg.EntriesFile)
	}
	if cfg.StatusFile != "/env/status.json" {
		t.Errorf("StatusFile = %v, want /env/status.json (env should override file)", cfg.StatusFile)
	}
	if cfg.SyncURL != "http://env" {
		t.Errorf("SyncURL = %v, want http://env (env should set)", cfg.SyncURL)
	}
	if !cfg.NoBrowser {
		t.Errorf("NoBrowser = %v, want true (file should set)", cfg.NoBrowser)
	}
}
