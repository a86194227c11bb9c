package domain

import (
	"errors"
	"fmt"
)

// Domain errors can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running viewer.
	ErrAlreadyRunning = errors.New("feedview: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped viewer.
	ErrNotRunning = errors.New("feedview: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("feedview: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("feedview: invalid configuration")

	// ErrMissingLink is matched by MissingLinkError.
	ErrMissingLink = errors.New("feedview: entry has no link")

	// ErrInvalidSelection is matched by InvalidSelectionError.
	ErrInvalidSelection = errors.New("feedview: invalid selection")

	// ErrDataSourceUnavailable is matched by DataSourceUnavailableError.
	ErrDataSourceUnavailable = errors.New("feedview: data source unavailable")

	// ErrLoopClosed is returned when work is submitted to a stopped owner loop.
	ErrLoopClosed = errors.New("feedview: loop closed")
)

// ErrorKind classifies errors surfaced through the error reporter.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingLink
	KindInvalidSelection
	KindDataSourceUnavailable
	KindLinkOpenFailed
)

// String returns a stable name for the kind, used in logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingLink:
		return "missing_link"
	case KindInvalidSelection:
		return "invalid_selection"
	case KindDataSourceUnavailable:
		return "data_source_unavailable"
	case KindLinkOpenFailed:
		return "link_open_failed"
	default:
		return "unknown"
	}
}

// MissingLinkError is returned when the selected entry has no link.
type MissingLinkError struct {
	EntryID  int64
	Position int
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("entry %d at position %d has no link", e.EntryID, e.Position)
}

// Is matches ErrMissingLink.
func (e *MissingLinkError) Is(target error) bool {
	return target == ErrMissingLink
}

// InvalidSelectionError is returned when a position falls outside the rendered list.
type InvalidSelectionError struct {
	Position int
	Len      int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("position %d out of range [0, %d)", e.Position, e.Len)
}

// Is matches ErrInvalidSelection.
func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// DataSourceUnavailableError wraps a failure to subscribe to, or an unexpected
// teardown of, the entry source or the sync status monitor.
type DataSourceUnavailableError struct {
	Source string
	Err    error
}

func (e *DataSourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Source)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

// Is matches ErrDataSourceUnavailable.
func (e *DataSourceUnavailableError) Is(target error) bool {
	return target == ErrDataSourceUnavailable
}

func (e *DataSourceUnavailableError) Unwrap() error {
	return e.Err
}

// KindOf maps an error to the kind reported to the embedding.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrMissingLink):
		return KindMissingLink
	case errors.Is(err, ErrInvalidSelection):
		return KindInvalidSelection
	case errors.Is(err, ErrDataSourceUnavailable):
		return KindDataSourceUnavailable
	default:
		return KindUnknown
	}
}
