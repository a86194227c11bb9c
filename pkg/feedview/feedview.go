package feedview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/feedview/internal/app"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/metrics"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("feedview: viewer closed")

// Viewer shows a live list of entries and a refresh indicator. Use New to
// create one, then Start to begin observing.
type Viewer struct {
	config    Config
	lifecycle *app.Lifecycle
	coord     *app.Coordinator
	observer  *indicatorObserver
	adapters  *adapters
	logger    ports.Logger
	metrics   app.Metrics
	plugins   []Plugin

	// loop is replaced on every Start; a Loop runs once.
	loop atomic.Pointer[app.Loop]

	mu     sync.RWMutex
	closed bool
}

// New creates a Viewer in StateStopped. Adapters not supplied through
// options are built from cfg.
func New(cfg Config, opts ...Option) (*Viewer, error) {
	cfg.SetDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	// an injected source makes the source settings irrelevant
	check := cfg
	if o.source != nil {
		check.EntriesSource = SourceMemory
	}
	if o.monitor != nil {
		check.StatusSource = StatusNone
	}
	if o.trigger != nil {
		check.Trigger = TriggerNone
	}
	if err := check.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	a, err := buildAdapters(cfg, o, logger)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}

	m := o.metrics
	if m == nil {
		m = metrics.NewRecorder()
	}

	w := &Viewer{
		config:   cfg,
		adapters: a,
		logger:   logger,
		metrics:  m,
		plugins:  o.plugins,
	}
	w.lifecycle = app.NewLifecycle(logger, &lifecycleEmitter{handler: o.eventHandler})
	w.observer = &indicatorObserver{Metrics: m, handler: o.eventHandler}

	formatters := app.DefaultFormatters(cfg.Location).
		With(domain.ColumnPublished, app.PublishedFormat(cfg.TimeFormat, cfg.Location))
	for col, fn := range o.formatters {
		formatters = formatters.With(col, fn)
	}
	query := domain.DefaultQuery()
	query.Limit = cfg.Limit
	if o.query != nil {
		query = *o.query
	}
	columns := o.columns
	if len(columns) == 0 {
		columns = domain.DisplayColumns
	}

	w.coord = app.NewCoordinator(app.CoordinatorConfig{
		Query:      query,
		Columns:    columns,
		Formatters: formatters,
	}, app.CoordinatorDeps{
		Source:     a.source,
		Monitor:    a.monitor,
		Trigger:    a.trigger,
		Renderer:   a.renderer,
		Opener:     a.opener,
		Reporter:   a.reporter,
		Dispatcher: app.DispatcherFunc(w.dispatch),
		Logger:     log.Component(logger, "coordinator"),
		Metrics:    w.observer,
	})
	return w, nil
}

// Start begins observing the data source and the sync monitor. The initial
// list and indicator have been rendered when Start returns.
func (w *Viewer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if !w.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := w.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	// the run outlives ctx; Stop and Close own teardown
	runCtx, cancel := context.WithCancel(context.Background())
	w.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Logger:         w.logger,
		MetricsHandler: w.metricsHandler(),
		Refresh:        w.Refresh,
	}
	for i, p := range w.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			w.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			w.shutdownPlugins(w.plugins[:i])
			w.lifecycle.Cancel()
			_ = w.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		w.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	loop := app.NewLoop(w.config.QueueSize, log.Component(w.logger, "loop"))
	w.loop.Store(loop)
	w.lifecycle.Go(func() {
		if err := loop.Run(runCtx); err != nil {
			w.logger.Error("loop error", ports.Err(err))
		}
	})

	if err := loop.Do(ctx, func() { w.coord.Start(runCtx) }); err != nil {
		w.lifecycle.Cancel()
		_ = w.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
		w.shutdownPlugins(w.plugins)
		_ = w.lifecycle.TransitionTo(app.StateCrashed, "start interrupted")
		return err
	}

	return w.lifecycle.TransitionTo(app.StateRunning, "observing")
}

// Stop cancels the subscriptions and stops the loop. Returns ErrNotRunning
// if the viewer is not running and ErrShutdownTimeout if the loop did not
// stop in time.
func (w *Viewer) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lifecycle.CanStop() {
		return ErrNotRunning
	}
	if err := w.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if loop := w.loop.Load(); loop != nil {
		if err := loop.Do(ctx, w.coord.Stop); err != nil {
			w.logger.Warn("stopping coordinator", ports.Err(err))
			// the loop is gone, so nothing else touches the coordinator
			if errors.Is(err, domain.ErrLoopClosed) {
				w.coord.Stop()
			}
		}
	}

	w.lifecycle.Cancel()
	err := w.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	w.shutdownPlugins(w.plugins)

	if err != nil {
		_ = w.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	_ = w.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	return nil
}

// Close stops the viewer if needed and closes the adapters it built.
// A closed viewer cannot be restarted.
func (w *Viewer) Close() error {
	if w.Status().CanStop() {
		if err := w.Stop(); err != nil && err != ErrNotRunning {
			w.logger.Warn("stop before close", ports.Err(err))
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.adapters.Close()
}

// Select opens the link of the entry at position (0-based) in the rendered
// list. Errors are also shown through the ErrorReporter.
func (w *Viewer) Select(ctx context.Context, position int) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.lifecycle.State() != app.StateRunning {
		return ErrNotRunning
	}
	var err error
	if doErr := w.loop.Load().Do(ctx, func() { err = w.coord.SelectEntry(position) }); doErr != nil {
		return doErr
	}
	return err
}

// Refresh asks the sync engine for an immediate pass. It returns at once and
// works whether or not the viewer is running.
func (w *Viewer) Refresh() {
	if loop := w.loop.Load(); loop != nil && loop.Dispatch(w.coord.RequestManualRefresh) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.coord.RequestManualRefresh()
}

// Status returns the current lifecycle state.
func (w *Viewer) Status() State {
	return convertState(w.lifecycle.State())
}

// Indicator returns the sync state behind the refresh indicator.
func (w *Viewer) Indicator() SyncState {
	return w.observer.current()
}

// Rendered returns a copy of the entries currently shown, in display order.
func (w *Viewer) Rendered(ctx context.Context) (ResultSet, error) {
	var rs domain.ResultSet
	err := w.inspect(ctx, func() { rs = w.coord.Rendered() })
	return rs, err
}

// View returns the formatted list last handed to the renderer.
func (w *Viewer) View(ctx context.Context) (ListView, error) {
	var v domain.ListView
	err := w.inspect(ctx, func() { v = w.coord.View() })
	return v, err
}

// Metrics returns the metrics the viewer reports to.
func (w *Viewer) Metrics() Metrics {
	return w.metrics
}

// inspect runs fn on the loop while running, or directly otherwise.
func (w *Viewer) inspect(ctx context.Context, fn func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lifecycle.State() == app.StateRunning {
		return w.loop.Load().Do(ctx, fn)
	}
	fn()
	return nil
}

func (w *Viewer) dispatch(fn func()) bool {
	loop := w.loop.Load()
	if loop == nil {
		return false
	}
	return loop.Dispatch(fn)
}

func (w *Viewer) metricsHandler() http.Handler {
	if h, ok := w.metrics.(interface{ Handler() http.Handler }); ok {
		return h.Handler()
	}
	return nil
}

func (w *Viewer) shutdownPlugins(plugins []Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			w.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			continue
		}
		w.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
}
