// Package metricsserver exposes a viewer's metrics over HTTP.
package metricsserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/feedview/pkg/feedview"
	"github.com/bft-labs/feedview/pkg/log"
)

const (
	// DefaultAddr is used when Config.Addr is empty.
	DefaultAddr = ":9464"
	// DefaultPath is where metrics are served when Config.Path is empty.
	DefaultPath = "/metrics"
)

// ErrNoHandler is returned by Initialize when the viewer's metrics cannot be
// served over HTTP.
var ErrNoHandler = errors.New("metricsserver: viewer metrics have no HTTP handler")

// Config holds the listen settings.
type Config struct {
	// Addr is the TCP address to listen on. Default: ":9464"
	Addr string

	// Path is the URL path of the metrics endpoint. Default: "/metrics"
	Path string

	// ReadHeaderTimeout bounds slow clients. Default: 5s
	ReadHeaderTimeout time.Duration
}

// Plugin runs an HTTP server for the lifetime of a viewer run.
type Plugin struct {
	mu sync.Mutex

	cfg    Config
	logger feedview.Logger
	server *http.Server
	addr   net.Addr
	done   chan struct{}
}

// New creates a metrics server plugin.
func New(cfg Config) *Plugin {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	return &Plugin{cfg: cfg}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "metricsserver"
}

// Initialize binds the listener and starts serving. The listener is bound
// before Initialize returns, so a busy port fails Start.
func (p *Plugin) Initialize(ctx context.Context, cfg feedview.PluginConfig) error {
	if cfg.MetricsHandler == nil {
		return ErrNoHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}

	ln, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", p.cfg.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(p.cfg.Path, cfg.MetricsHandler)
	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: p.cfg.ReadHeaderTimeout,
	}
	p.addr = ln.Addr()
	p.done = make(chan struct{})

	server, done := p.server, p.done
	go func() {
		defer close(done)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("metrics server stopped", log.Err(err))
		}
	}()

	p.logger.Info("metrics server listening",
		log.String("addr", p.addr.String()),
		log.String("path", p.cfg.Path))
	return nil
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx ends.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	server, done := p.server, p.done
	p.server, p.addr = nil, nil
	p.mu.Unlock()

	if server == nil {
		return nil
	}
	err := server.Shutdown(ctx)
	<-done
	return err
}

// Addr returns the bound address while the server runs, or nil.
func (p *Plugin) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}
