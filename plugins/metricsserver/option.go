package metricsserver

import "github.com/bft-labs/feedview/pkg/feedview"

// WithMetricsServer returns a feedview Option that serves the viewer's
// Prometheus metrics on addr while the viewer runs.
//
// Usage:
//
//	v, err := feedview.New(cfg, metricsserver.WithMetricsServer(":9464"))
func WithMetricsServer(addr string) feedview.Option {
	return feedview.WithPlugin(New(Config{Addr: addr}))
}
