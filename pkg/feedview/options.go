package feedview

import (
	"github.com/bft-labs/feedview/internal/app"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// Re-exported types so embedders can implement the ports and read results
// without importing internal packages.
type (
	Entry         = domain.Entry
	ResultSet     = domain.ResultSet
	ListView      = domain.ListView
	Row           = domain.Row
	Column        = domain.Column
	Query         = domain.Query
	SyncState     = domain.SyncState
	SyncStatus    = domain.SyncStatus
	StatusMask    = domain.StatusMask
	ErrorKind     = domain.ErrorKind
	Subscription  = ports.Subscription
	StatusHandle  = ports.StatusHandle
	ChangeFunc    = ports.ChangeFunc
	StatusFunc    = ports.StatusFunc
	DataSource    = ports.DataSource
	StatusMonitor = ports.SyncStatusMonitor
	SyncTrigger   = ports.SyncTrigger
	Renderer      = ports.Renderer
	LinkOpener    = ports.LinkOpener
	ErrorReporter = ports.ErrorReporter
	FormatFunc    = app.FormatFunc
	Metrics       = app.Metrics

	Logger   = log.Logger
	LogField = log.Field

	MissingLinkError           = domain.MissingLinkError
	InvalidSelectionError      = domain.InvalidSelectionError
	DataSourceUnavailableError = domain.DataSourceUnavailableError
)

// Sync states reported by Indicator.
const (
	SyncIdle    = domain.SyncIdle
	SyncPending = domain.SyncPending
	SyncActive  = domain.SyncActive
)

// Errors returned by the viewer.
var (
	ErrAlreadyRunning        = domain.ErrAlreadyRunning
	ErrNotRunning            = domain.ErrNotRunning
	ErrShutdownTimeout       = domain.ErrShutdownTimeout
	ErrInvalidConfig         = domain.ErrInvalidConfig
	ErrMissingLink           = domain.ErrMissingLink
	ErrInvalidSelection      = domain.ErrInvalidSelection
	ErrDataSourceUnavailable = domain.ErrDataSourceUnavailable
)

// Option configures optional behavior of a Viewer.
type Option func(*options)

type options struct {
	source       ports.DataSource
	monitor      ports.SyncStatusMonitor
	trigger      ports.SyncTrigger
	renderer     ports.Renderer
	opener       ports.LinkOpener
	reporter     ports.ErrorReporter
	logger       ports.Logger
	eventHandler EventHandler
	metrics      app.Metrics
	plugins      []Plugin
	formatters   map[domain.Column]app.FormatFunc
	columns      []domain.Column
	query        *domain.Query
}

// WithDataSource replaces the entry source selected by Config.
func WithDataSource(source DataSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithStatusMonitor replaces the sync status source selected by Config.
func WithStatusMonitor(monitor StatusMonitor) Option {
	return func(o *options) {
		o.monitor = monitor
	}
}

// WithSyncTrigger replaces the trigger selected by Config.
func WithSyncTrigger(trigger SyncTrigger) Option {
	return func(o *options) {
		o.trigger = trigger
	}
}

// WithRenderer sets where the list and indicator are drawn. If the renderer
// also implements ErrorReporter or LinkOpener it is used for those too,
// unless they are set explicitly.
func WithRenderer(renderer Renderer) Option {
	return func(o *options) {
		o.renderer = renderer
	}
}

// WithLinkOpener sets how entry links are opened.
func WithLinkOpener(opener LinkOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithErrorReporter sets where user-facing errors go.
func WithErrorReporter(reporter ErrorReporter) Option {
	return func(o *options) {
		o.reporter = reporter
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for viewer events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithMetrics replaces the built-in Prometheus recorder.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPlugin registers a plugin to be initialized when the viewer starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithFormatter sets how one column is formatted.
func WithFormatter(column Column, fn FormatFunc) Option {
	return func(o *options) {
		if o.formatters == nil {
			o.formatters = make(map[domain.Column]app.FormatFunc)
		}
		o.formatters[column] = fn
	}
}

// WithColumns sets the displayed columns, in order.
func WithColumns(columns ...Column) Option {
	return func(o *options) {
		o.columns = columns
	}
}

// WithQuery sets the sort order and limit, overriding Config.Limit.
func WithQuery(q Query) Option {
	return func(o *options) {
		o.query = &q
	}
}
