package app

import (
	"strconv"
	"time"

	"github.com/bft-labs/feedview/internal/domain"
)

// PublishedLayout is how publish times are shown in the list.
const PublishedLayout = "2006-01-02 15:04"

// FormatFunc renders one column of an entry.
type FormatFunc func(e domain.Entry, c domain.Column) string

// Formatters maps columns to their formatter, falling back to a default for
// columns without one.
type Formatters struct {
	byColumn map[domain.Column]FormatFunc
	fallback FormatFunc
}

// DefaultFormatters formats publish times with PublishedLayout in loc
// (local time when nil) and everything else with DefaultFormat.
func DefaultFormatters(loc *time.Location) Formatters {
	if loc == nil {
		loc = time.Local
	}
	return NewFormatters(DefaultFormat).With(domain.ColumnPublished, PublishedFormat(PublishedLayout, loc))
}

// NewFormatters returns an empty mapping with the given fallback.
func NewFormatters(fallback FormatFunc) Formatters {
	if fallback == nil {
		fallback = DefaultFormat
	}
	return Formatters{byColumn: map[domain.Column]FormatFunc{}, fallback: fallback}
}

// With returns a copy of f with fn bound to c.
func (f Formatters) With(c domain.Column, fn FormatFunc) Formatters {
	out := Formatters{byColumn: make(map[domain.Column]FormatFunc, len(f.byColumn)+1), fallback: f.fallback}
	for k, v := range f.byColumn {
		out.byColumn[k] = v
	}
	out.byColumn[c] = fn
	if out.fallback == nil {
		out.fallback = DefaultFormat
	}
	return out
}

// Format renders column c of e.
func (f Formatters) Format(e domain.Entry, c domain.Column) string {
	if fn, ok := f.byColumn[c]; ok && fn != nil {
		return fn(e, c)
	}
	if f.fallback != nil {
		return f.fallback(e, c)
	}
	return DefaultFormat(e, c)
}

// Project formats rs into rows of the given columns.
func (f Formatters) Project(rs domain.ResultSet, columns []domain.Column) domain.ListView {
	view := domain.ListView{
		Columns: append([]domain.Column(nil), columns...),
		Rows:    make([]domain.Row, 0, rs.Len()),
	}
	for _, e := range rs.Entries {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = f.Format(e, c)
		}
		view.Rows = append(view.Rows, domain.Row{Entry: e, Cells: cells})
	}
	return view
}

// DefaultFormat renders a column as its plain value.
func DefaultFormat(e domain.Entry, c domain.Column) string {
	switch c {
	case domain.ColumnID:
		return strconv.FormatInt(e.ID, 10)
	case domain.ColumnTitle:
		return e.Title
	case domain.ColumnLink:
		return e.Link
	case domain.ColumnPublished:
		if e.PublishedAt.IsZero() {
			return ""
		}
		return e.PublishedAt.Format(time.RFC3339)
	default:
		return ""
	}
}

// PublishedFormat renders the publish time with layout in loc.
func PublishedFormat(layout string, loc *time.Location) FormatFunc {
	return func(e domain.Entry, _ domain.Column) string {
		if e.PublishedAt.IsZero() {
			return ""
		}
		return e.PublishedAt.In(loc).Format(layout)
	}
}
