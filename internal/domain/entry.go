package domain

import (
	"sort"
	"time"
)

// Entry is a single synced feed item. Entries are owned by the data source
// and treated as read-only by everything else.
type Entry struct {
	ID          int64
	Title       string
	Link        string // empty when the feed item has no link
	PublishedAt time.Time
}

// HasLink reports whether the entry can be opened externally.
func (e Entry) HasLink() bool {
	return e.Link != ""
}

// ResultSet is an ordered snapshot of entries as produced by a query.
type ResultSet struct {
	Entries []Entry
}

// NewResultSet builds a result set from entries in source insertion order.
func NewResultSet(entries ...Entry) ResultSet {
	return ResultSet{Entries: entries}
}

// Len returns the number of entries.
func (rs ResultSet) Len() int {
	return len(rs.Entries)
}

// Empty reports whether the result set has no entries.
func (rs ResultSet) Empty() bool {
	return len(rs.Entries) == 0
}

// At returns the entry at position and whether the position was in range.
func (rs ResultSet) At(position int) (Entry, bool) {
	if position < 0 || position >= len(rs.Entries) {
		return Entry{}, false
	}
	return rs.Entries[position], true
}

// Clone returns a copy that does not share the backing array.
func (rs ResultSet) Clone() ResultSet {
	if rs.Entries == nil {
		return ResultSet{}
	}
	out := make([]Entry, len(rs.Entries))
	copy(out, rs.Entries)
	return ResultSet{Entries: out}
}

// Column names a projected entry field.
type Column string

const (
	ColumnID        Column = "id"
	ColumnTitle     Column = "title"
	ColumnLink      Column = "link"
	ColumnPublished Column = "published"
)

// Projection is the full set of columns a query selects.
var Projection = []Column{ColumnID, ColumnTitle, ColumnLink, ColumnPublished}

// DisplayColumns are the columns shown for each row of the list.
var DisplayColumns = []Column{ColumnTitle, ColumnPublished}

// Order is a sort direction.
type Order int

const (
	Descending Order = iota
	Ascending
)

// String returns the SQL keyword for the order.
func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// Query describes the live query the list observes.
type Query struct {
	SortKey Column
	Order   Order
	Limit   int // 0 means unbounded
}

// DefaultQuery orders entries newest first.
func DefaultQuery() Query {
	return Query{SortKey: ColumnPublished, Order: Descending}
}

// Apply returns a copy of rs ordered by the query. The sort is stable, so
// entries with equal keys keep the insertion order of the source.
func (q Query) Apply(rs ResultSet) ResultSet {
	out := rs.Clone()
	sort.SliceStable(out.Entries, func(i, j int) bool {
		c := compareEntries(out.Entries[i], out.Entries[j], q.SortKey)
		if q.Order == Ascending {
			return c < 0
		}
		return c > 0
	})
	if q.Limit > 0 && len(out.Entries) > q.Limit {
		out.Entries = out.Entries[:q.Limit]
	}
	return out
}

func compareEntries(a, b Entry, key Column) int {
	switch key {
	case ColumnID:
		return compareInt64(a.ID, b.ID)
	case ColumnTitle:
		return compareString(a.Title, b.Title)
	case ColumnLink:
		return compareString(a.Link, b.Link)
	default:
		return a.PublishedAt.Compare(b.PublishedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
