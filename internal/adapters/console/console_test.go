package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bft-labs/feedview/internal/domain"
)

func newPlainRenderer() (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := NewRenderer(Options{Out: &out, Err: &errOut, Color: ColorNever})
	return r, &out, &errOut
}

func sampleView() domain.ListView {
	return domain.ListView{
		Columns: []domain.Column{domain.ColumnTitle, domain.ColumnPublished},
		Rows: []domain.Row{
			{Entry: domain.Entry{ID: 1, Title: "First"}, Cells: []string{"First", "2024-01-02 10:00"}},
			{Entry: domain.Entry{ID: 2, Title: "Second"}, Cells: []string{"Second", "2024-01-01 09:30"}},
		},
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"ALWAYS", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ResolveColors(ColorAuto) {
		t.Error("auto with NO_COLOR should disable colors")
	}
	if !ResolveColors(ColorAlways) {
		t.Error("always should enable colors")
	}
	if ResolveColors(ColorNever) {
		t.Error("never should disable colors")
	}
}

func TestRenderer_Render(t *testing.T) {
	r, out, _ := newPlainRenderer()

	r.Render(sampleView())

	got := out.String()
	for _, want := range []string{"TITLE", "PUBLISHED", "First", "Second", "2024-01-02 10:00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Errorf("rows out of order:\n%s", got)
	}
}

func TestRenderer_RenderEmptyAndRedraw(t *testing.T) {
	r, out, _ := newPlainRenderer()

	r.RenderEmpty()
	if !strings.Contains(out.String(), "No entries") {
		t.Fatalf("expected empty state, got %q", out.String())
	}

	r.Render(sampleView())
	out.Reset()
	r.Redraw()
	if !strings.Contains(out.String(), "Second") {
		t.Errorf("redraw lost rows: %q", out.String())
	}
}

func TestRenderer_IndicatorPrintsOnChange(t *testing.T) {
	r, out, _ := newPlainRenderer()

	r.SetIndicatorVisible(false)
	if out.Len() != 0 {
		t.Fatalf("hidden indicator should print nothing initially, got %q", out.String())
	}

	r.SetIndicatorVisible(true)
	r.SetIndicatorVisible(true)
	if n := strings.Count(out.String(), "refreshing"); n != 1 {
		t.Errorf("refreshing printed %d times, want 1", n)
	}
	if !r.IndicatorVisible() {
		t.Error("IndicatorVisible() = false after show")
	}

	r.SetIndicatorVisible(false)
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("expected up to date line, got %q", out.String())
	}
}

func TestRenderer_ReportError(t *testing.T) {
	r, out, errOut := newPlainRenderer()

	r.ReportError(domain.KindMissingLink, "entry 7 has no link")

	if out.Len() != 0 {
		t.Errorf("errors must not go to stdout: %q", out.String())
	}
	want := "[ERROR] missing_link: entry 7 has no link\n"
	if errOut.String() != want {
		t.Errorf("ReportError wrote %q, want %q", errOut.String(), want)
	}
}

func TestBrowserOpener(t *testing.T) {
	var opened []string
	o := &BrowserOpener{open: func(u string) error {
		opened = append(opened, u)
		return nil
	}}

	if err := o.OpenExternalLink("https://example.com/a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"file:///etc/passwd", "javascript:alert(1)", "https://", "::"} {
		if err := o.OpenExternalLink(bad); err == nil {
			t.Errorf("OpenExternalLink(%q) should fail", bad)
		}
	}
	if len(opened) != 1 || opened[0] != "https://example.com/a" {
		t.Errorf("opened = %v", opened)
	}

	o.open = func(string) error { return errors.New("no display") }
	if err := o.OpenExternalLink("http://example.com"); err == nil {
		t.Error("expected browser failure to be returned")
	}
}

func TestPrintOpener(t *testing.T) {
	var buf bytes.Buffer
	o := PrintOpener{Out: &buf}

	if err := o.OpenExternalLink("http://example.com/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "http://example.com/x\n" {
		t.Errorf("printed %q", buf.String())
	}
}
