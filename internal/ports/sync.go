package ports

import (
	"context"

	"github.com/bft-labs/feedview/internal/domain"
)

// StatusHandle identifies a status listener registered with a SyncStatusMonitor.
type StatusHandle struct {
	ID string
}

// Valid reports whether the handle refers to a registered listener.
func (h StatusHandle) Valid() bool {
	return h.ID != ""
}

// StatusFunc is called on sync status transitions visible through the
// subscription mask. Implementations may call it from any goroutine.
type StatusFunc func(pending, active bool)

// SyncStatusMonitor reports whether the background sync is pending or active.
type SyncStatusMonitor interface {
	// Subscribe registers onChange and returns the current status with the handle.
	Subscribe(ctx context.Context, mask domain.StatusMask, onChange StatusFunc) (StatusHandle, domain.SyncStatus, error)

	// Unsubscribe removes a listener. Unknown handles are ignored.
	Unsubscribe(h StatusHandle) error
}

// SyncTrigger requests an immediate sync pass. The request is fire-and-forget:
// it must not block and its outcome is only observable through the monitor.
type SyncTrigger interface {
	RequestImmediateSync()
}

// SyncTriggerFunc adapts a plain function to SyncTrigger.
type SyncTriggerFunc func()

// RequestImmediateSync calls f.
func (f SyncTriggerFunc) RequestImmediateSync() {
	f()
}
