// Package postgres implements the data source port on a PostgreSQL entries
// table. Change notifications arrive through LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// Defaults for Options.
const (
	DefaultChannel      = "feedview_entries"
	DefaultQueryTimeout = 5 * time.Second
	DefaultMinReconnect = time.Second
	DefaultMaxReconnect = time.Minute
	pingInterval        = 90 * time.Second
)

// ErrClosed is returned by Query after Close.
var ErrClosed = errors.New("postgres store closed")

// Options configures a Store.
type Options struct {
	DSN          string
	Channel      string
	QueryTimeout time.Duration
	MinReconnect time.Duration
	MaxReconnect time.Duration
	Logger       ports.Logger
}

func (o *Options) setDefaults() {
	if o.Channel == "" {
		o.Channel = DefaultChannel
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.MinReconnect <= 0 {
		o.MinReconnect = DefaultMinReconnect
	}
	if o.MaxReconnect < o.MinReconnect {
		o.MaxReconnect = DefaultMaxReconnect
	}
	if o.Logger == nil {
		o.Logger = log.NewNoopLogger()
	}
}

type pgListener struct {
	query    domain.Query
	onChange ports.ChangeFunc
}

// Store is a DataSource over the entries table.
type Store struct {
	db     *sql.DB
	opts   Options
	logger ports.Logger

	mu       sync.Mutex
	listener *pq.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	closed   bool

	listeners *fanout.Registry[pgListener]
}

// Open connects to opts.DSN and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidConfig)
	}
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db, opts), nil
}

// New wraps an open database. opts.DSN is still needed for the notification
// listener, which holds its own connection.
func New(db *sql.DB, opts Options) *Store {
	opts.setDefaults()
	return &Store{
		db:        db,
		opts:      opts,
		logger:    opts.Logger,
		listeners: fanout.NewRegistry[pgListener](),
	}
}

// Ensure creates the entries table and the trigger that notifies the
// configured channel on every change.
func (s *Store) Ensure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, triggerSQL(s.opts.Channel)); err != nil {
		return fmt.Errorf("create notify trigger: %w", err)
	}
	return nil
}

// Upsert inserts or updates entries. Sync engines and fixtures use it; the
// viewer itself only reads.
func (s *Store) Upsert(ctx context.Context, entries ...domain.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, e := range entries {
		link := sql.NullString{String: e.Link, Valid: e.Link != ""}
		if _, err := tx.ExecContext(ctx, upsertSQL, e.ID, e.Title, link, e.PublishedAt); err != nil {
			return fmt.Errorf("upsert entry %d: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Query implements ports.DataSource.
func (s *Store) Query(ctx context.Context, q domain.Query, onChange ports.ChangeFunc) (ports.Subscription, domain.ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.Subscription{}, domain.ResultSet{}, ErrClosed
	}
	if err := s.listenLocked(); err != nil {
		return ports.Subscription{}, domain.ResultSet{}, err
	}
	rs, err := s.fetch(ctx, q)
	if err != nil {
		return ports.Subscription{}, domain.ResultSet{}, err
	}
	id := s.listeners.Add(pgListener{query: q, onChange: onChange})
	return ports.Subscription{ID: id}, rs, nil
}

// Cancel implements ports.DataSource.
func (s *Store) Cancel(sub ports.Subscription) error {
	s.listeners.Remove(sub.ID)
	return nil
}

// Close stops listening and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, done, listener := s.cancel, s.done, s.listener
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	var errs []error
	if listener != nil {
		errs = append(errs, listener.Close())
	}
	s.listeners.Clear()
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

func (s *Store) listenLocked() error {
	if s.listener != nil {
		return nil
	}
	if s.opts.DSN == "" {
		return fmt.Errorf("%w: postgres dsn is required for change notifications", domain.ErrInvalidConfig)
	}
	l := pq.NewListener(s.opts.DSN, s.opts.MinReconnect, s.opts.MaxReconnect, s.onEvent)
	if err := l.Listen(s.opts.Channel); err != nil {
		l.Close()
		return fmt.Errorf("listen %s: %w", s.opts.Channel, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.listener, s.cancel, s.done = l, cancel, make(chan struct{})
	go s.watch(ctx, l)
	s.logger.Info("listening for entry changes", ports.String("channel", s.opts.Channel))
	return nil
}

func (s *Store) watch(ctx context.Context, l *pq.Listener) {
	defer close(s.done)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.Notify:
			// n is nil after a reconnect; changes may have been missed, so refresh either way
			if n != nil {
				s.logger.Debug("entries changed", ports.String("op", n.Extra))
			}
			s.refresh(ctx)
		case <-ticker.C:
			go func() {
				if err := l.Ping(); err != nil {
					s.logger.Warn("listener ping failed", ports.Err(err))
				}
			}()
		}
	}
}

func (s *Store) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		s.logger.Debug("listener connected")
	case pq.ListenerEventDisconnected:
		s.logger.Warn("listener disconnected", ports.Err(err))
		for _, l := range s.listeners.Snapshot() {
			l.onChange(domain.ResultSet{}, fmt.Errorf("notification connection lost: %w", err))
		}
	case pq.ListenerEventReconnected:
		s.logger.Info("listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		s.logger.Warn("listener reconnect failed", ports.Err(err))
	}
}

func (s *Store) refresh(ctx context.Context) {
	for _, l := range s.listeners.Snapshot() {
		rs, err := s.fetch(ctx, l.query)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("refresh entries", ports.Err(err))
		}
		l.onChange(rs, err)
	}
}

func (s *Store) fetch(ctx context.Context, q domain.Query) (domain.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()
	stmt, args := selectSQL(q)
	return scanEntries(s.db.QueryContext(ctx, stmt, args...))
}

func scanEntries(rows *sql.Rows, err error) (domain.ResultSet, error) {
	if err != nil {
		return domain.ResultSet{}, err
	}
	defer rows.Close()
	var out []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var link sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &link, &e.PublishedAt); err != nil {
			return domain.ResultSet{}, err
		}
		e.Link = link.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return domain.ResultSet{}, err
	}
	return domain.NewResultSet(out...), nil
}
