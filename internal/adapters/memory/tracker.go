package memory

import (
	"context"
	"sync"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
)

type trackerListener struct {
	mask     domain.StatusMask
	onChange ports.StatusFunc
}

// Tracker is an in-process sync status monitor. A sync engine running in the
// same process flips the flags; subscribers hear about transitions their
// mask selects.
type Tracker struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	status    domain.SyncStatus
	listeners *fanout.Registry[trackerListener]
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{listeners: fanout.NewRegistry[trackerListener]()}
}

// Subscribe implements ports.SyncStatusMonitor.
func (t *Tracker) Subscribe(_ context.Context, mask domain.StatusMask, onChange ports.StatusFunc) (ports.StatusHandle, domain.SyncStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.listeners.Add(trackerListener{mask: mask, onChange: onChange})
	return ports.StatusHandle{ID: id}, t.status, nil
}

// Unsubscribe implements ports.SyncStatusMonitor.
func (t *Tracker) Unsubscribe(h ports.StatusHandle) error {
	t.listeners.Remove(h.ID)
	return nil
}

// Status returns the current flags.
func (t *Tracker) Status() domain.SyncStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SetPending updates the pending flag.
func (t *Tracker) SetPending(pending bool) {
	t.update(func(s *domain.SyncStatus) { s.Pending = pending })
}

// SetActive updates the active flag.
func (t *Tracker) SetActive(active bool) {
	t.update(func(s *domain.SyncStatus) { s.Active = active })
}

// Set replaces both flags at once.
func (t *Tracker) Set(status domain.SyncStatus) {
	t.update(func(s *domain.SyncStatus) { *s = status })
}

// RequestImmediateSync marks a sync as pending, making the tracker usable as
// a SyncTrigger for an in-process engine that polls Status.
func (t *Tracker) RequestImmediateSync() {
	t.SetPending(true)
}

// Subscribers returns the number of listeners.
func (t *Tracker) Subscribers() int {
	return t.listeners.Len()
}

// update holds notifyMu through the fan-out so transitions reach listeners in
// the order they were applied.
func (t *Tracker) update(fn func(*domain.SyncStatus)) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	prev := t.status
	fn(&t.status)
	next := t.status
	t.mu.Unlock()

	for _, l := range t.listeners.Snapshot() {
		if l.mask.Matches(prev, next) {
			l.onChange(next.Pending, next.Active)
		}
	}
}
