package feedview

import (
	"sync/atomic"

	"github.com/bft-labs/feedview/internal/app"
	"github.com/bft-labs/feedview/internal/domain"
)

// EventHandler receives viewer notifications. Indicator events are delivered
// on the viewer's loop goroutine and must return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnIndicatorChange(event IndicatorEvent)
}

// BaseEventHandler provides no-op implementations for embedding.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnIndicatorChange(IndicatorEvent) {}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// IndicatorEvent describes a sync state change.
type IndicatorEvent struct {
	Previous SyncState
	Current  SyncState
	// Visible is whether the refreshing indicator is shown.
	Visible bool
}

// lifecycleEmitter adapts EventHandler to app.EventEmitter.
type lifecycleEmitter struct {
	handler EventHandler
}

func (e *lifecycleEmitter) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

// indicatorObserver forwards coordinator metrics and tracks the sync state
// so Indicator can answer without a loop round trip.
type indicatorObserver struct {
	app.Metrics
	handler EventHandler
	state   atomic.Int32
}

func (o *indicatorObserver) ObserveIndicator(state domain.SyncState) {
	o.Metrics.ObserveIndicator(state)
	prev := domain.SyncState(o.state.Swap(int32(state)))
	if prev == state || o.handler == nil {
		return
	}
	o.handler.OnIndicatorChange(IndicatorEvent{Previous: prev, Current: state, Visible: state.Busy()})
}

func (o *indicatorObserver) current() domain.SyncState {
	return domain.SyncState(o.state.Load())
}
