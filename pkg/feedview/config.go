package feedview

import (
	"fmt"
	"time"

	"github.com/bft-labs/feedview/internal/domain"
)

// Entry sources.
const (
	SourceMemory   = "memory"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Sync status sources.
const (
	StatusNone  = "none"
	StatusFile  = "file"
	StatusRedis = "redis"
)

// Sync triggers.
const (
	TriggerNone  = "none"
	TriggerHTTP  = "http"
	TriggerRedis = "redis"
)

// Default values applied by SetDefaults.
const (
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultTriggerMaxRetries = 3
	DefaultDebounce          = 100 * time.Millisecond
	DefaultQueueSize         = 64
	DefaultTimeFormat        = "2006-01-02 15:04"
)

// Config selects and configures the adapters a Viewer builds for itself.
// Adapters supplied through options take precedence over these settings.
type Config struct {
	// EntriesSource is one of memory, file or postgres.
	EntriesSource   string
	EntriesFile     string
	PostgresDSN     string
	PostgresChannel string

	// StatusSource is one of none, file or redis.
	StatusSource        string
	StatusFile          string
	RedisURL            string
	RedisStatusKey      string
	RedisStatusChannel  string
	RedisTriggerChannel string

	// Trigger is one of none, http or redis.
	Trigger           string
	SyncURL           string
	AuthKey           string
	HTTPTimeout       time.Duration
	TriggerMaxRetries int

	// Debounce coalesces file change events.
	Debounce  time.Duration
	QueueSize int

	// TimeFormat is the Go layout of the published column.
	TimeFormat string
	Location   *time.Location

	// Limit caps the number of entries shown; 0 shows all.
	Limit int
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.EntriesSource == "" {
		c.EntriesSource = SourceMemory
	}
	if c.StatusSource == "" {
		c.StatusSource = StatusNone
	}
	if c.Trigger == "" {
		c.Trigger = TriggerNone
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.TriggerMaxRetries <= 0 {
		c.TriggerMaxRetries = DefaultTriggerMaxRetries
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.TimeFormat == "" {
		c.TimeFormat = DefaultTimeFormat
	}
	if c.Location == nil {
		c.Location = time.Local
	}
}

// Validate checks that every selected adapter has what it needs.
func (c Config) Validate() error {
	switch c.EntriesSource {
	case SourceMemory:
	case SourceFile:
		if c.EntriesFile == "" {
			return invalid("entries_file is required for the file source")
		}
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres source")
		}
	default:
		return invalid("unknown entries_source %q", c.EntriesSource)
	}

	switch c.StatusSource {
	case StatusNone:
	case StatusFile:
		if c.StatusFile == "" {
			return invalid("status_file is required for the file status source")
		}
	case StatusRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis status source")
		}
	default:
		return invalid("unknown status_source %q", c.StatusSource)
	}

	switch c.Trigger {
	case TriggerNone:
	case TriggerHTTP:
		if c.SyncURL == "" {
			return invalid("sync_url is required for the http trigger")
		}
	case TriggerRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis trigger")
		}
	default:
		return invalid("unknown trigger %q", c.Trigger)
	}

	if c.Limit < 0 {
		return invalid("limit must not be negative")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
