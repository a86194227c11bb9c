package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
)

// DefaultQueueSize is the owner loop buffer used when none is configured.
const DefaultQueueSize = 64

// Dispatcher marshals work onto the goroutine that owns the coordinator.
type Dispatcher interface {
	// Dispatch enqueues fn and reports whether it was accepted.
	Dispatch(fn func()) bool
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func()) bool

// Dispatch calls d.
func (d DispatcherFunc) Dispatch(fn func()) bool {
	return d(fn)
}

// Inline runs work on the caller's goroutine. Only safe when every caller
// is already serialized, as in single-goroutine tests.
var Inline Dispatcher = DispatcherFunc(func(fn func()) bool {
	fn()
	return true
})

// Loop is a single-consumer queue. Work submitted from any goroutine runs
// one item at a time on the goroutine executing Run.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
	logger    ports.Logger
}

// NewLoop creates a loop buffering up to size pending items.
func NewLoop(size int, logger ports.Logger) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Dispatch enqueues fn without running it. It blocks while the buffer is
// full and returns false once the loop has stopped.
func (l *Loop) Dispatch(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do enqueues fn and waits until it has run. It must not be called from
// the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Dispatch(func() {
		defer close(finished)
		fn()
	}) {
		return domain.ErrLoopClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return domain.ErrLoopClosed
		}
	}
}

// Run drains the queue until ctx is cancelled. Items still queued at that
// point are discarded. A loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	defer l.close()
	for {
		select {
		case <-ctx.Done():
			if n := len(l.queue); n > 0 {
				l.logger.Debug("discarding queued work", ports.Int("pending", n))
			}
			return nil
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued items.
func (l *Loop) Pending() int {
	return len(l.queue)
}

func (l *Loop) close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", ports.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
