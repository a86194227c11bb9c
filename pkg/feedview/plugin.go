package feedview

import (
	"context"
	"net/http"
)

// Plugin extends a Viewer with optional functionality. Plugins are
// initialized in registration order on Start and shut down in reverse
// order on Stop.
type Plugin interface {
	Name() string

	// Initialize is called during Start. A returned error aborts Start and
	// leaves the viewer Crashed. ctx is cancelled when the viewer stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called during Stop. Errors are logged, and the remaining
	// plugins are still shut down.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin receives from the viewer.
type PluginConfig struct {
	Logger Logger

	// MetricsHandler serves the viewer's metrics, or is nil when the
	// configured Metrics cannot be exposed over HTTP.
	MetricsHandler http.Handler

	// Refresh requests an immediate sync.
	Refresh func()
}

// BasePlugin provides no-op Initialize and Shutdown for embedding.
type BasePlugin struct {
	name string
}

// NewBasePlugin returns a BasePlugin named name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

func (p BasePlugin) Name() string                                   { return p.name }
func (p BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (p BasePlugin) Shutdown(context.Context) error                 { return nil }
