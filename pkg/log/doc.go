// Package log provides the logging abstraction used by feedview components.
//
// Embedders can plug their own logger in by implementing [Logger]. A zerolog
// adapter and a no-op logger are provided:
//
//	lvl, _ := log.ParseLevel("debug")
//	logger := log.NewZerologAdapter(os.Stderr, log.FormatConsole, lvl)
//
// [Component] derives a child logger tagged with the component name; the
// viewer uses it to separate coordinator, loop and adapter output.
package log
