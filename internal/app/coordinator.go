package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// CoordinatorConfig contains the query and presentation settings of the list.
type CoordinatorConfig struct {
	Query      domain.Query
	Columns    []domain.Column
	Formatters Formatters
}

// DefaultCoordinatorConfig shows title and publish time, newest first.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Query:      domain.DefaultQuery(),
		Columns:    domain.DisplayColumns,
		Formatters: DefaultFormatters(nil),
	}
}

// Metrics observes what the coordinator shows and reports.
type Metrics interface {
	ObserveRender(rows int)
	ObserveIndicator(state domain.SyncState)
	ObserveError(kind domain.ErrorKind)
	ObserveOpen()
	ObserveRefresh()
	ObserveDropped()
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRender(int)                 {}
func (NoopMetrics) ObserveIndicator(domain.SyncState) {}
func (NoopMetrics) ObserveError(domain.ErrorKind)     {}
func (NoopMetrics) ObserveOpen()                      {}
func (NoopMetrics) ObserveRefresh()                   {}
func (NoopMetrics) ObserveDropped()                   {}

// CoordinatorDeps are the collaborators of a Coordinator. Monitor and
// Trigger may be nil when no sync engine is attached.
type CoordinatorDeps struct {
	Source     ports.DataSource
	Monitor    ports.SyncStatusMonitor
	Trigger    ports.SyncTrigger
	Renderer   ports.Renderer
	Opener     ports.LinkOpener
	Reporter   ports.ErrorReporter
	Dispatcher Dispatcher
	Logger     ports.Logger
	Metrics    Metrics
}

// Coordinator keeps the rendered list in step with the data source and the
// refresh indicator in step with the sync monitor.
//
// A Coordinator is not safe for concurrent use. Every method must run on
// the owner goroutine; collaborator notifications are routed there through
// the Dispatcher.
type Coordinator struct {
	config CoordinatorConfig
	deps   CoordinatorDeps

	started    bool
	generation uint64
	sub        ports.Subscription
	handle     ports.StatusHandle

	rendered domain.ResultSet
	view     domain.ListView
	state    domain.SyncState
}

// NewCoordinator creates a stopped coordinator.
func NewCoordinator(config CoordinatorConfig, deps CoordinatorDeps) *Coordinator {
	if config.Columns == nil {
		config.Columns = domain.DisplayColumns
	}
	if config.Formatters.byColumn == nil {
		config.Formatters = DefaultFormatters(nil)
	}
	if config.Query.SortKey == "" {
		config.Query = domain.DefaultQuery()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = Inline
	}
	if deps.Metrics == nil {
		deps.Metrics = NoopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = log.NewNoopLogger()
	}
	return &Coordinator{config: config, deps: deps}
}

// Start subscribes to the data source and the sync monitor and renders the
// current list and indicator. Calling Start while started does nothing.
// Subscription failures are reported and leave the empty state shown.
func (c *Coordinator) Start(ctx context.Context) {
	if c.started {
		c.deps.Logger.Debug("start ignored, already started")
		return
	}
	c.started = true
	c.generation++
	gen := c.generation
	c.state = domain.SyncIdle

	sub, rs, err := c.deps.Source.Query(ctx, c.config.Query, func(rs domain.ResultSet, err error) {
		c.deliver(func() { c.onSourceChange(gen, rs, err) })
	})
	if err != nil {
		c.rendered = domain.ResultSet{}
		c.report(&domain.DataSourceUnavailableError{Source: "entries", Err: err})
		c.renderEmpty()
	} else {
		c.sub = sub
		c.OnDataChanged(rs)
	}

	status := domain.SyncStatus{}
	if c.deps.Monitor != nil {
		handle, current, err := c.deps.Monitor.Subscribe(ctx, domain.MaskAll, func(pending, active bool) {
			c.deliver(func() { c.onMonitorChange(gen, pending, active) })
		})
		if err != nil {
			c.rendered = domain.ResultSet{}
			c.report(&domain.DataSourceUnavailableError{Source: "sync status", Err: err})
			c.renderEmpty()
		} else {
			c.handle = handle
			status = current
		}
	}
	c.OnStatusChanged(status.Pending, status.Active)

	c.deps.Logger.Info("coordinator started",
		ports.Int("entries", c.rendered.Len()),
		ports.String("sync", c.state.String()),
	)
}

// Stop cancels both subscriptions. It is safe to call when not started.
// Nothing is rendered after Stop until the next Start.
func (c *Coordinator) Stop() {
	if !c.started {
		return
	}
	c.started = false

	if c.sub.Valid() {
		if err := c.deps.Source.Cancel(c.sub); err != nil {
			c.deps.Logger.Warn("cancel entries subscription", ports.Err(err))
		}
		c.sub = ports.Subscription{}
	}
	if c.handle.Valid() && c.deps.Monitor != nil {
		if err := c.deps.Monitor.Unsubscribe(c.handle); err != nil {
			c.deps.Logger.Warn("unsubscribe sync status", ports.Err(err))
		}
		c.handle = ports.StatusHandle{}
	}

	c.deps.Logger.Info("coordinator stopped")
}

// OnDataChanged replaces the rendered list. An empty result set shows the
// empty state. Ignored while stopped.
func (c *Coordinator) OnDataChanged(rs domain.ResultSet) {
	if !c.started {
		return
	}
	c.rendered = c.config.Query.Apply(rs)
	if c.rendered.Empty() {
		c.renderEmpty()
		return
	}
	c.view = c.config.Formatters.Project(c.rendered, c.config.Columns)
	c.deps.Renderer.Render(c.view)
	c.deps.Metrics.ObserveRender(c.view.Len())
}

// OnStatusChanged folds the monitor flags into the sync state and shows the
// indicator unless the state is Idle. Ignored while stopped.
func (c *Coordinator) OnStatusChanged(pending, active bool) {
	if !c.started {
		return
	}
	prev := c.state
	c.state = domain.StateFromFlags(pending, active)
	c.deps.Renderer.SetIndicatorVisible(c.state.Busy())
	c.deps.Metrics.ObserveIndicator(c.state)
	if prev != c.state {
		c.deps.Logger.Debug("sync state changed",
			ports.String("from", prev.String()),
			ports.String("to", c.state.String()),
		)
	}
}

// SelectEntry opens the link of the entry at position in the rendered list.
// Failures are logged and reported before being returned.
func (c *Coordinator) SelectEntry(position int) error {
	entry, ok := c.rendered.At(position)
	if !ok {
		err := &domain.InvalidSelectionError{Position: position, Len: c.rendered.Len()}
		c.report(err)
		return err
	}
	if !entry.HasLink() {
		err := &domain.MissingLinkError{EntryID: entry.ID, Position: position}
		c.report(err)
		return err
	}

	c.deps.Logger.Info("opening url",
		ports.Int64("entry_id", entry.ID),
		ports.String("url", entry.Link),
	)
	if err := c.deps.Opener.OpenExternalLink(entry.Link); err != nil {
		c.deps.Logger.Warn("open link failed", ports.String("url", entry.Link), ports.Err(err))
		c.deps.Reporter.ReportError(domain.KindLinkOpenFailed, err.Error())
		c.deps.Metrics.ObserveError(domain.KindLinkOpenFailed)
		return fmt.Errorf("open %s: %w", entry.Link, err)
	}
	c.deps.Metrics.ObserveOpen()
	return nil
}

// RequestManualRefresh asks the sync engine for an immediate pass. The sync
// state is left to the monitor. The request is forwarded even while stopped.
func (c *Coordinator) RequestManualRefresh() {
	if c.deps.Trigger == nil {
		c.deps.Logger.Warn("refresh requested but no sync trigger is configured")
		return
	}
	c.deps.Logger.Debug("manual refresh requested", ports.Bool("observing", c.started))
	c.deps.Trigger.RequestImmediateSync()
	c.deps.Metrics.ObserveRefresh()
}

// Started reports whether the coordinator is observing its collaborators.
func (c *Coordinator) Started() bool {
	return c.started
}

// State returns the current sync state.
func (c *Coordinator) State() domain.SyncState {
	return c.state
}

// Rendered returns a copy of the entries currently shown, in display order.
func (c *Coordinator) Rendered() domain.ResultSet {
	return c.rendered.Clone()
}

// View returns the last formatted list handed to the renderer.
func (c *Coordinator) View() domain.ListView {
	if c.rendered.Empty() {
		return domain.ListView{Columns: c.config.Columns}
	}
	return c.view
}

func (c *Coordinator) deliver(fn func()) {
	if !c.deps.Dispatcher.Dispatch(fn) {
		c.deps.Logger.Debug("notification dropped, loop closed")
		c.deps.Metrics.ObserveDropped()
	}
}

func (c *Coordinator) current(gen uint64) bool {
	if c.started && gen == c.generation {
		return true
	}
	c.deps.Logger.Debug("stale notification dropped")
	c.deps.Metrics.ObserveDropped()
	return false
}

func (c *Coordinator) onSourceChange(gen uint64, rs domain.ResultSet, err error) {
	if !c.current(gen) {
		return
	}
	if err != nil {
		c.rendered = domain.ResultSet{}
		c.report(&domain.DataSourceUnavailableError{Source: "entries", Err: err})
		c.renderEmpty()
		return
	}
	c.OnDataChanged(rs)
}

func (c *Coordinator) onMonitorChange(gen uint64, pending, active bool) {
	if !c.current(gen) {
		return
	}
	c.OnStatusChanged(pending, active)
}

func (c *Coordinator) renderEmpty() {
	c.view = domain.ListView{Columns: c.config.Columns}
	c.deps.Renderer.RenderEmpty()
	c.deps.Metrics.ObserveRender(0)
}

func (c *Coordinator) report(err error) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindMissingLink:
		c.deps.Logger.Error("attempt to open entry with no link", ports.Err(err))
	case domain.KindInvalidSelection:
		c.deps.Logger.Warn("invalid selection", ports.Err(err))
	default:
		c.deps.Logger.Error("data source unavailable", ports.Err(err))
	}
	c.deps.Reporter.ReportError(kind, err.Error())
	c.deps.Metrics.ObserveError(kind)
}
