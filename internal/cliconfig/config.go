package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/feedview/internal/adapters/console"
	"github.com/bft-labs/feedview/pkg/feedview"
	"github.com/bft-labs/feedview/pkg/log"
)

// Config holds CLI configuration for feedview.
type Config struct {
	EntriesSource   string
	EntriesFile     string
	PostgresDSN     string
	PostgresChannel string

	StatusSource        string
	StatusFile          string
	RedisURL            string
	RedisStatusKey      string
	RedisStatusChannel  string
	RedisTriggerChannel string

	Trigger           string
	SyncURL           string
	AuthKey           string
	HTTPTimeout       time.Duration
	TriggerMaxRetries int

	Debounce  time.Duration
	QueueSize int
	Limit     int

	TimeFormat string
	Timezone   string
	Color      string

	MetricsAddr string
	LogLevel    string
	LogFormat   string

	NoBrowser bool
	Once      bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		EntriesSource:     feedview.SourceFile,
		StatusSource:      feedview.StatusNone,
		Trigger:           feedview.TriggerNone,
		HTTPTimeout:       feedview.DefaultHTTPTimeout,
		TriggerMaxRetries: feedview.DefaultTriggerMaxRetries,
		Debounce:          feedview.DefaultDebounce,
		QueueSize:         feedview.DefaultQueueSize,
		TimeFormat:        feedview.DefaultTimeFormat,
		Color:             "auto",
		LogLevel:          "info",
		LogFormat:         string(log.FormatConsole),
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	c.EntriesSource = strings.ToLower(c.EntriesSource)
	c.StatusSource = strings.ToLower(c.StatusSource)
	c.Trigger = strings.ToLower(c.Trigger)

	if c.EntriesSource == feedview.SourceMemory {
		return fmt.Errorf("entries-source memory is only available to embedders")
	}

	// Ensure no trailing slash
	c.SyncURL = strings.TrimRight(c.SyncURL, "/")

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	if _, err := console.ParseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := log.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if _, err := c.location(); err != nil {
		return err
	}

	if _, err := c.Library(); err != nil {
		return err
	}
	return nil
}

// Library converts the CLI configuration into a feedview.Config.
func (c Config) Library() (feedview.Config, error) {
	loc, err := c.location()
	if err != nil {
		return feedview.Config{}, err
	}
	cfg := feedview.Config{
		EntriesSource:       c.EntriesSource,
		EntriesFile:         c.EntriesFile,
		PostgresDSN:         c.PostgresDSN,
		PostgresChannel:     c.PostgresChannel,
		StatusSource:        c.StatusSource,
		StatusFile:          c.StatusFile,
		RedisURL:            c.RedisURL,
		RedisStatusKey:      c.RedisStatusKey,
		RedisStatusChannel:  c.RedisStatusChannel,
		RedisTriggerChannel: c.RedisTriggerChannel,
		Trigger:             c.Trigger,
		SyncURL:             c.SyncURL,
		AuthKey:             c.AuthKey,
		HTTPTimeout:         c.HTTPTimeout,
		TriggerMaxRetries:   c.TriggerMaxRetries,
		Debounce:            c.Debounce,
		QueueSize:           c.QueueSize,
		TimeFormat:          c.TimeFormat,
		Location:            loc,
		Limit:               c.Limit,
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return feedview.Config{}, err
	}
	return cfg, nil
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.AuthKey != "" {
		c.AuthKey = "*****"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "*****"
	}
	return c
}

func (c Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("parse timezone: %w", err)
	}
	return loc, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
