package feedview

import "github.com/bft-labs/feedview/internal/adapters/memory"

// MemorySource is an in-process DataSource. Embedders that produce entries
// themselves push them with Put, Delete and Replace.
type MemorySource = memory.Store

// MemoryStatus is an in-process StatusMonitor that is also a SyncTrigger:
// a refresh request marks it pending.
type MemoryStatus = memory.Tracker

// NewMemorySource creates a source holding entries.
func NewMemorySource(entries ...Entry) *MemorySource {
	return memory.NewStore(entries...)
}

// NewMemoryStatus creates an idle status monitor.
func NewMemoryStatus() *MemoryStatus {
	return memory.NewTracker()
}
