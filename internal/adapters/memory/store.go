// Package memory provides in-process implementations of the data source and
// sync status ports, for embedding applications that sync into memory and
// for tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
)

// ErrClosed is delivered to listeners when the store is closed.
var ErrClosed = errors.New("memory store closed")

type storeListener struct {
	query    domain.Query
	onChange ports.ChangeFunc
}

// Store is an observable entry store. Entries keep the order in which they
// were first inserted; queries sort a copy.
//
// Listeners hear snapshots in the order the writes happened, so they must not
// write to the store from the callback.
type Store struct {
	mu      sync.RWMutex
	entries []domain.Entry
	index   map[int64]int
	closed  bool

	// held from snapshot through fan-out
	notifyMu sync.Mutex

	listeners *fanout.Registry[storeListener]
}

// NewStore creates a store holding entries.
func NewStore(entries ...domain.Entry) *Store {
	s := &Store{index: map[int64]int{}, listeners: fanout.NewRegistry[storeListener]()}
	s.upsert(entries)
	return s
}

// Query implements ports.DataSource.
func (s *Store) Query(_ context.Context, q domain.Query, onChange ports.ChangeFunc) (ports.Subscription, domain.ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ports.Subscription{}, domain.ResultSet{}, ErrClosed
	}
	id := s.listeners.Add(storeListener{query: q, onChange: onChange})
	return ports.Subscription{ID: id}, q.Apply(s.snapshotLocked()), nil
}

// Cancel implements ports.DataSource.
func (s *Store) Cancel(sub ports.Subscription) error {
	s.listeners.Remove(sub.ID)
	return nil
}

// Put inserts entries or replaces those with a known ID in place.
func (s *Store) Put(entries ...domain.Entry) {
	s.commit(func() { s.upsert(entries) })
}

// Delete removes entries by ID.
func (s *Store) Delete(ids ...int64) {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.commit(func() {
		kept := s.entries[:0]
		for _, e := range s.entries {
			if !drop[e.ID] {
				kept = append(kept, e)
			}
		}
		s.entries = kept
		s.reindex()
	})
}

// Replace swaps the whole content of the store.
func (s *Store) Replace(entries ...domain.Entry) {
	s.commit(func() {
		s.entries = nil
		s.index = map[int64]int{}
		s.upsert(entries)
	})
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribers returns the number of live queries.
func (s *Store) Subscribers() int {
	return s.listeners.Len()
}

// Close tears the store down. Live queries receive ErrClosed.
func (s *Store) Close() error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	for _, l := range s.listeners.Snapshot() {
		l.onChange(domain.ResultSet{}, ErrClosed)
	}
	s.listeners.Clear()
	return nil
}

// commit applies fn under the write lock and fans the resulting snapshot out
// before the next write can take its own.
func (s *Store) commit(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	rs := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(rs)
}

func (s *Store) upsert(entries []domain.Entry) {
	for _, e := range entries {
		if i, ok := s.index[e.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
}

func (s *Store) reindex() {
	s.index = make(map[int64]int, len(s.entries))
	for i, e := range s.entries {
		s.index[e.ID] = i
	}
}

func (s *Store) snapshotLocked() domain.ResultSet {
	return domain.NewResultSet(s.entries...).Clone()
}

func (s *Store) notify(rs domain.ResultSet) {
	for _, l := range s.listeners.Snapshot() {
		l.onChange(l.query.Apply(rs), nil)
	}
}
