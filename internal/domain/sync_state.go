package domain

// SyncState is the coarse state of the background sync task.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncPending
	SyncActive
)

// String returns a human-readable representation of the state.
func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "Idle"
	case SyncPending:
		return "Pending"
	case SyncActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// Busy reports whether the refresh indicator should be shown.
func (s SyncState) Busy() bool {
	return s != SyncIdle
}

// SyncStatus is the raw pair of flags reported by a status monitor.
type SyncStatus struct {
	Pending bool
	Active  bool
}

// State folds the flags into a SyncState. Active wins over pending.
func (s SyncStatus) State() SyncState {
	return StateFromFlags(s.Pending, s.Active)
}

// StateFromFlags derives the sync state from the monitor flags.
func StateFromFlags(pending, active bool) SyncState {
	switch {
	case active:
		return SyncActive
	case pending:
		return SyncPending
	default:
		return SyncIdle
	}
}

// StatusMask selects which status transitions a subscriber wants to hear about.
type StatusMask uint8

const (
	MaskPending StatusMask = 1 << iota
	MaskActive

	MaskAll = MaskPending | MaskActive
)

// Has reports whether m includes flag.
func (m StatusMask) Has(flag StatusMask) bool {
	return m&flag != 0
}

// Matches reports whether a transition from prev to next is visible through m.
func (m StatusMask) Matches(prev, next SyncStatus) bool {
	if m.Has(MaskPending) && prev.Pending != next.Pending {
		return true
	}
	if m.Has(MaskActive) && prev.Active != next.Active {
		return true
	}
	return false
}
