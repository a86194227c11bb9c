package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FEEDVIEW_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("entries-source", os.Getenv("FEEDVIEW_ENTRIES_SOURCE"), &cfg.EntriesSource)
	s.setString("entries-file", os.Getenv("FEEDVIEW_ENTRIES_FILE"), &cfg.EntriesFile)
	s.setString("postgres-dsn", os.Getenv("FEEDVIEW_POSTGRES_DSN"), &cfg.PostgresDSN)
	s.setString("postgres-channel", os.Getenv("FEEDVIEW_POSTGRES_CHANNEL"), &cfg.PostgresChannel)
	s.setString("status-source", os.Getenv("FEEDVIEW_STATUS_SOURCE"), &cfg.StatusSource)
	s.setString("status-file", os.Getenv("FEEDVIEW_STATUS_FILE"), &cfg.StatusFile)
	s.setString("redis-url", os.Getenv("FEEDVIEW_REDIS_URL"), &cfg.RedisURL)
	s.setString("redis-status-key", os.Getenv("FEEDVIEW_REDIS_STATUS_KEY"), &cfg.RedisStatusKey)
	s.setString("redis-status-channel", os.Getenv("FEEDVIEW_REDIS_STATUS_CHANNEL"), &cfg.RedisStatusChannel)
	s.setString("redis-trigger-channel", os.Getenv("FEEDVIEW_REDIS_TRIGGER_CHANNEL"), &cfg.RedisTriggerChannel)
	s.setString("trigger", os.Getenv("FEEDVIEW_TRIGGER"), &cfg.Trigger)
	s.setString("sync-url", os.Getenv("FEEDVIEW_SYNC_URL"), &cfg.SyncURL)
	s.setString("auth-key", os.Getenv("FEEDVIEW_AUTH_KEY"), &cfg.AuthKey)
	s.setString("time-format", os.Getenv("FEEDVIEW_TIME_FORMAT"), &cfg.TimeFormat)
	s.setString("timezone", os.Getenv("FEEDVIEW_TIMEZONE"), &cfg.Timezone)
	s.setString("color", os.Getenv("FEEDVIEW_COLOR"), &cfg.Color)
	s.setString("metrics-addr", os.Getenv("FEEDVIEW_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("FEEDVIEW_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("FEEDVIEW_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("http-timeout", os.Getenv("FEEDVIEW_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("FEEDVIEW_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("trigger-max-retries", os.Getenv("FEEDVIEW_TRIGGER_MAX_RETRIES"), &cfg.TriggerMaxRetries); err != nil {
		return err
	}
	if err := s.setIntFromString("queue-size", os.Getenv("FEEDVIEW_QUEUE_SIZE"), &cfg.QueueSize); err != nil {
		return err
	}
	if err := s.setIntFromString("limit", os.Getenv("FEEDVIEW_LIMIT"), &cfg.Limit); err != nil {
		return err
	}

	s.setBoolFromString("no-browser", os.Getenv("FEEDVIEW_NO_BROWSER"), &cfg.NoBrowser)
	s.setBoolFromString("once", os.Getenv("FEEDVIEW_ONCE"), &cfg.Once)

	return nil
}
