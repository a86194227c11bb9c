package app

import (
	"testing"
	"time"

	"github.com/bft-labs/feedview/internal/domain"
)

func TestFormatters_DefaultMapping(t *testing.T) {
	f := DefaultFormatters(time.UTC)
	e := domain.Entry{
		ID:          42,
		Title:       "Release notes",
		Link:        "https://example.com/r",
		PublishedAt: time.Date(2023, 12, 31, 23, 59, 30, 0, time.UTC),
	}

	tests := []struct {
		column domain.Column
		want   string
	}{
		{domain.ColumnID, "42"},
		{domain.ColumnTitle, "Release notes"},
		{domain.ColumnLink, "https://example.com/r"},
		{domain.ColumnPublished, "2023-12-31 23:59"},
		{domain.Column("unknown"), ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.column), func(t *testing.T) {
			if got := f.Format(e, tt.column); got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.column, got, tt.want)
			}
		})
	}
}

func TestFormatters_PublishedUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	f := DefaultFormatters(tokyo)
	e := domain.Entry{PublishedAt: time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)}

	if got := f.Format(e, domain.ColumnPublished); got != "2024-01-01 09:30" {
		t.Errorf("published = %q, want 2024-01-01 09:30", got)
	}
}

func TestFormatters_ZeroTime(t *testing.T) {
	f := DefaultFormatters(time.UTC)

	if got := f.Format(domain.Entry{}, domain.ColumnPublished); got != "" {
		t.Errorf("published = %q, want empty", got)
	}
}

func TestFormatters_WithOverridesWithoutMutating(t *testing.T) {
	base := DefaultFormatters(time.UTC)
	shout := base.With(domain.ColumnTitle, func(e domain.Entry, _ domain.Column) string {
		return e.Title + "!"
	})
	e := domain.Entry{Title: "hi"}

	if got := shout.Format(e, domain.ColumnTitle); got != "hi!" {
		t.Errorf("override = %q, want hi!", got)
	}
	if got := base.Format(e, domain.ColumnTitle); got != "hi" {
		t.Errorf("base changed to %q", got)
	}
}

func TestFormatters_Project(t *testing.T) {
	f := NewFormatters(nil)
	rs := domain.NewResultSet(domain.Entry{ID: 1, Title: "a"}, domain.Entry{ID: 2, Title: "b"})

	v := f.Project(rs, []domain.Column{domain.ColumnID, domain.ColumnTitle})

	if v.Len() != 2 {
		t.Fatalf("rows = %d, want 2", v.Len())
	}
	if v.Cell(1, domain.ColumnID) != "2" || v.Cell(1, domain.ColumnTitle) != "b" {
		t.Errorf("row 1 = %v", v.Rows[1].Cells)
	}
}
