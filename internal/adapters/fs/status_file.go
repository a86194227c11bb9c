package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// StatusFileName is the file a sync engine writes its status to.
const StatusFileName = "sync-status.json"

type statusRecord struct {
	Pending   bool      `json:"pending"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusFileRepository reads and writes the sync status file.
type StatusFileRepository struct {
	path string
}

// NewStatusFileRepository stores the status at path. A directory is
// accepted and resolved to StatusFileName inside it.
func NewStatusFileRepository(path string) *StatusFileRepository {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, StatusFileName)
	}
	return &StatusFileRepository{path: path}
}

// Load returns the last saved status. A missing file means idle.
func (r *StatusFileRepository) Load(ctx context.Context) (domain.SyncStatus, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SyncStatus{}, nil
		}
		return domain.SyncStatus{}, err
	}
	var rec statusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.SyncStatus{}, err
	}
	return domain.SyncStatus{Pending: rec.Pending, Active: rec.Active}, nil
}

// Save writes the status atomically (temp file, then rename).
func (r *StatusFileRepository) Save(ctx context.Context, status domain.SyncStatus) error {
	return writeJSONAtomic(r.path, statusRecord{
		Pending:   status.Pending,
		Active:    status.Active,
		UpdatedAt: time.Now().UTC(),
	})
}

// Path returns the full path to the status file.
func (r *StatusFileRepository) Path() string {
	return r.path
}

type statusListener struct {
	mask     domain.StatusMask
	onChange ports.StatusFunc
}

// StatusFile is a SyncStatusMonitor over a status file written by an
// external sync engine.
type StatusFile struct {
	repo     *StatusFileRepository
	debounce time.Duration
	logger   ports.Logger

	mu        sync.Mutex
	last      domain.SyncStatus
	watcher   *fileWatcher
	listeners *fanout.Registry[statusListener]
}

// NewStatusFile creates a monitor for the status file at path.
func NewStatusFile(path string, debounce time.Duration, logger ports.Logger) *StatusFile {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &StatusFile{
		repo:      NewStatusFileRepository(path),
		debounce:  debounce,
		logger:    logger,
		listeners: fanout.NewRegistry[statusListener](),
	}
}

// Repository exposes the underlying file, for engines in the same process.
func (s *StatusFile) Repository() *StatusFileRepository {
	return s.repo
}

// Subscribe implements ports.SyncStatusMonitor.
func (s *StatusFile) Subscribe(ctx context.Context, mask domain.StatusMask, onChange ports.StatusFunc) (ports.StatusHandle, domain.SyncStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.repo.Load(ctx)
	if err != nil {
		return ports.StatusHandle{}, domain.SyncStatus{}, err
	}
	if s.watcher == nil {
		w, err := startWatcher(s.repo.Path(), s.debounce, s.logger, s.reload)
		if err != nil {
			return ports.StatusHandle{}, domain.SyncStatus{}, err
		}
		s.watcher = w
	}
	s.last = status

	id := s.listeners.Add(statusListener{mask: mask, onChange: onChange})
	return ports.StatusHandle{ID: id}, status, nil
}

// Unsubscribe implements ports.SyncStatusMonitor.
func (s *StatusFile) Unsubscribe(h ports.StatusHandle) error {
	s.listeners.Remove(h.ID)

	s.mu.Lock()
	var w *fileWatcher
	if s.listeners.Len() == 0 && s.watcher != nil {
		w, s.watcher = s.watcher, nil
	}
	s.mu.Unlock()

	if w != nil {
		w.Close()
	}
	return nil
}

// Close stops watching the file.
func (s *StatusFile) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Close()
	}
	s.listeners.Clear()
	return nil
}

func (s *StatusFile) reload() {
	next, err := s.repo.Load(context.Background())
	if err != nil {
		// a half-written file is replaced by the next event; keep the last status
		s.logger.Warn("reload sync status", ports.String("path", s.repo.Path()), ports.Err(err))
		return
	}

	s.mu.Lock()
	prev := s.last
	s.last = next
	s.mu.Unlock()

	for _, l := range s.listeners.Snapshot() {
		if l.mask.Matches(prev, next) {
			l.onChange(next.Pending, next.Active)
		}
	}
}
