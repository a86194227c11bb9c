// Package console renders the entry list to a terminal and reports errors
// on stderr.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/bft-labs/feedview/internal/domain"
)

// ColorMode selects when output is colored.
type ColorMode int

const (
	// ColorAuto colors unless NO_COLOR is set or the terminal is dumb.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses auto, always or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors reports whether mode enables colors in this environment.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		return os.Getenv("TERM") != "dumb"
	}
}

// Options configures a Renderer.
type Options struct {
	Out   io.Writer
	Err   io.Writer
	Color ColorMode
}

// Renderer draws the list as a table. It implements ports.Renderer and
// ports.ErrorReporter.
type Renderer struct {
	out       io.Writer
	err       io.Writer
	useColors bool

	mu        sync.Mutex
	last      domain.ListView
	indicator bool
}

// NewRenderer creates a renderer. Nil writers default to stdout and stderr.
func NewRenderer(opts Options) *Renderer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	return &Renderer{
		out:       opts.Out,
		err:       opts.Err,
		useColors: ResolveColors(opts.Color),
	}
}

// Render draws view with a 1-based position column.
func (r *Renderer) Render(view domain.ListView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = view
	r.draw(view)
}

// RenderEmpty shows the empty state.
func (r *Renderer) RenderEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = domain.ListView{}
	r.paint(color.FgHiBlack, "No entries\n")
}

// Redraw repeats the last render.
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last.Len() == 0 {
		r.paint(color.FgHiBlack, "No entries\n")
		return
	}
	r.draw(r.last)
}

// SetIndicatorVisible prints a line when the indicator changes.
func (r *Renderer) SetIndicatorVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if visible == r.indicator {
		return
	}
	r.indicator = visible
	if visible {
		r.paint(color.FgYellow, "⟳ refreshing...\n")
	} else {
		r.paint(color.FgGreen, "✓ up to date\n")
	}
}

// IndicatorVisible reports the last indicator state.
func (r *Renderer) IndicatorVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indicator
}

// ReportError writes the error to the error stream.
func (r *Renderer) ReportError(kind domain.ErrorKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.useColors {
		color.New(color.FgRed).Fprintf(r.err, "✗ %s: %s\n", kind, message)
		return
	}
	fmt.Fprintf(r.err, "[ERROR] %s: %s\n", kind, message)
}

func (r *Renderer) draw(view domain.ListView) {
	header := make([]string, 0, len(view.Columns)+1)
	header = append(header, "#")
	for _, c := range view.Columns {
		header = append(header, string(c))
	}
	rows := make([][]string, 0, view.Len())
	for i, row := range view.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, strconv.Itoa(i+1))
		cells = append(cells, row.Cells...)
		rows = append(rows, cells)
	}

	table := tablewriter.NewTable(r.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	table.Bulk(rows)
	table.Render()
}

func (r *Renderer) paint(attr color.Attribute, s string) {
	if r.useColors {
		color.New(attr).Fprint(r.out, s)
		return
	}
	fmt.Fprint(r.out, s)
}
