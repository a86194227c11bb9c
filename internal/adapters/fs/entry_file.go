package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// ErrClosed is returned by Query after Close.
var ErrClosed = errors.New("entry file closed")

// fileEntry is the on-disk shape of an entry. Published is unix milliseconds.
type fileEntry struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Link      *string `json:"link,omitempty"`
	Published int64   `json:"published"`
}

func (f fileEntry) toDomain() domain.Entry {
	e := domain.Entry{ID: f.ID, Title: f.Title, PublishedAt: time.UnixMilli(f.Published)}
	if f.Link != nil {
		e.Link = *f.Link
	}
	return e
}

func fromDomain(e domain.Entry) fileEntry {
	f := fileEntry{ID: e.ID, Title: e.Title, Published: e.PublishedAt.UnixMilli()}
	if e.Link != "" {
		link := e.Link
		f.Link = &link
	}
	return f
}

// ReadEntries loads an entries file. A missing file is an empty feed.
func ReadEntries(path string) (domain.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ResultSet{}, nil
		}
		return domain.ResultSet{}, err
	}
	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.ResultSet{}, fmt.Errorf("parse %s: %w", path, err)
	}
	entries := make([]domain.Entry, 0, len(raw))
	for _, f := range raw {
		entries = append(entries, f.toDomain())
	}
	return domain.NewResultSet(entries...), nil
}

// WriteEntries replaces the entries file atomically.
func WriteEntries(path string, entries []domain.Entry) error {
	raw := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		raw = append(raw, fromDomain(e))
	}
	return writeJSONAtomic(path, raw)
}

type entryListener struct {
	query    domain.Query
	onChange ports.ChangeFunc
}

// EntryFileOptions tunes an EntryFile.
type EntryFileOptions struct {
	Debounce time.Duration
	Logger   ports.Logger
}

// EntryFile is a DataSource backed by a JSON entries file. The file is
// watched while at least one query is live and re-read on every change.
type EntryFile struct {
	path   string
	opts   EntryFileOptions
	logger ports.Logger

	mu        sync.Mutex
	watcher   *fileWatcher
	closed    bool
	listeners *fanout.Registry[entryListener]
}

// NewEntryFile creates a data source for path.
func NewEntryFile(path string, opts EntryFileOptions) *EntryFile {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &EntryFile{
		path:      path,
		opts:      opts,
		logger:    logger,
		listeners: fanout.NewRegistry[entryListener](),
	}
}

// Path returns the watched file.
func (f *EntryFile) Path() string {
	return f.path
}

// Query implements ports.DataSource.
func (f *EntryFile) Query(_ context.Context, q domain.Query, onChange ports.ChangeFunc) (ports.Subscription, domain.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ports.Subscription{}, domain.ResultSet{}, ErrClosed
	}

	rs, err := ReadEntries(f.path)
	if err != nil {
		return ports.Subscription{}, domain.ResultSet{}, err
	}
	if f.watcher == nil {
		w, err := startWatcher(f.path, f.opts.Debounce, f.logger, f.reload)
		if err != nil {
			return ports.Subscription{}, domain.ResultSet{}, err
		}
		f.watcher = w
		f.logger.Debug("watching entries file", ports.String("path", f.path))
	}

	id := f.listeners.Add(entryListener{query: q, onChange: onChange})
	return ports.Subscription{ID: id}, q.Apply(rs), nil
}

// Cancel implements ports.DataSource. The watcher stops with the last query.
func (f *EntryFile) Cancel(sub ports.Subscription) error {
	f.listeners.Remove(sub.ID)

	f.mu.Lock()
	var w *fileWatcher
	if f.listeners.Len() == 0 && f.watcher != nil {
		w, f.watcher = f.watcher, nil
	}
	f.mu.Unlock()

	if w != nil {
		w.Close()
	}
	return nil
}

// Close stops watching. Live queries are told the source is gone.
func (f *EntryFile) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	w := f.watcher
	f.watcher = nil
	f.mu.Unlock()

	if w != nil {
		w.Close()
	}
	for _, l := range f.listeners.Snapshot() {
		l.onChange(domain.ResultSet{}, ErrClosed)
	}
	f.listeners.Clear()
	return nil
}

func (f *EntryFile) reload() {
	rs, err := ReadEntries(f.path)
	if err != nil {
		f.logger.Warn("reload entries file", ports.String("path", f.path), ports.Err(err))
	} else {
		f.logger.Debug("entries file changed", ports.Int("entries", rs.Len()))
	}
	for _, l := range f.listeners.Snapshot() {
		if err != nil {
			l.onChange(domain.ResultSet{}, err)
			continue
		}
		l.onChange(l.query.Apply(rs), nil)
	}
}
