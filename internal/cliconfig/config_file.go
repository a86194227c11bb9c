package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	EntriesSource       string `toml:"entries_source"`
	EntriesFile         string `toml:"entries_file"`
	PostgresDSN         string `toml:"postgres_dsn"`
	PostgresChannel     string `toml:"postgres_channel"`
	StatusSource        string `toml:"status_source"`
	StatusFile          string `toml:"status_file"`
	RedisURL            string `toml:"redis_url"`
	RedisStatusKey      string `toml:"redis_status_key"`
	RedisStatusChannel  string `toml:"redis_status_channel"`
	RedisTriggerChannel string `toml:"redis_trigger_channel"`
	Trigger             string `toml:"trigger"`
	SyncURL             string `toml:"sync_url"`
	AuthKey             string `toml:"auth_key"`
	HTTPTimeout         string `toml:"http_timeout"`
	TriggerMaxRetries   int    `toml:"trigger_max_retries"`
	Debounce            string `toml:"debounce"`
	QueueSize           int    `toml:"queue_size"`
	Limit               int    `toml:"limit"`
	TimeFormat          string `toml:"time_format"`
	Timezone            string `toml:"timezone"`
	Color               string `toml:"color"`
	MetricsAddr         string `toml:"metrics_addr"`
	LogLevel            string `toml:"log_level"`
	LogFormat           string `toml:"log_format"`
	NoBrowser           *bool  `toml:"no_browser"`
	Once                *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.feedview/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".feedview", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("entries-source", fc.EntriesSource, &cfg.EntriesSource)
	s.setString("entries-file", fc.EntriesFile, &cfg.EntriesFile)
	s.setString("postgres-dsn", fc.PostgresDSN, &cfg.PostgresDSN)
	s.setString("postgres-channel", fc.PostgresChannel, &cfg.PostgresChannel)
	s.setString("status-source", fc.StatusSource, &cfg.StatusSource)
	s.setString("status-file", fc.StatusFile, &cfg.StatusFile)
	s.setString("redis-url", fc.RedisURL, &cfg.RedisURL)
	s.setString("redis-status-key", fc.RedisStatusKey, &cfg.RedisStatusKey)
	s.setString("redis-status-channel", fc.RedisStatusChannel, &cfg.RedisStatusChannel)
	s.setString("redis-trigger-channel", fc.RedisTriggerChannel, &cfg.RedisTriggerChannel)
	s.setString("trigger", fc.Trigger, &cfg.Trigger)
	s.setString("sync-url", fc.SyncURL, &cfg.SyncURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("time-format", fc.TimeFormat, &cfg.TimeFormat)
	s.setString("timezone", fc.Timezone, &cfg.Timezone)
	s.setString("color", fc.Color, &cfg.Color)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setInt("trigger-max-retries", fc.TriggerMaxRetries, &cfg.TriggerMaxRetries)
	s.setInt("queue-size", fc.QueueSize, &cfg.QueueSize)
	s.setInt("limit", fc.Limit, &cfg.Limit)

	s.setBool("no-browser", fc.NoBrowser, &cfg.NoBrowser)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
