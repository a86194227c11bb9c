// Package metrics provides Prometheus metrics for the viewer.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/feedview/internal/domain"
)

const namespace = "feedview"

// Recorder implements app.Metrics on its own registry, so several viewers
// can live in one process.
type Recorder struct {
	registry *prometheus.Registry

	renders   prometheus.Counter
	rows      prometheus.Gauge
	rowsHist  prometheus.Histogram
	syncState *prometheus.GaugeVec
	errors    *prometheus.CounterVec
	opens     prometheus.Counter
	refreshes prometheus.Counter
	dropped   prometheus.Counter
}

// NewRecorder creates a recorder with Go runtime collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of list renders, including empty renders",
		}),
		rows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rendered_rows",
			Help:      "Number of rows currently displayed",
		}),
		rowsHist: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_rows",
			Help:      "Distribution of rows per render",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		syncState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_state",
			Help:      "Current sync state (1 for the active state, 0 otherwise)",
		}, []string{"state"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors reported to the user",
		}, []string{"kind"}),
		opens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_opened_total",
			Help:      "Total number of entry links opened",
		}),
		refreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_refreshes_total",
			Help:      "Total number of manual refresh requests",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_notifications_total",
			Help:      "Notifications discarded because they arrived after stop",
		}),
	}
	r.ObserveIndicator(domain.SyncIdle)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveRender(rows int) {
	r.renders.Inc()
	r.rows.Set(float64(rows))
	r.rowsHist.Observe(float64(rows))
}

func (r *Recorder) ObserveIndicator(state domain.SyncState) {
	for _, s := range []domain.SyncState{domain.SyncIdle, domain.SyncPending, domain.SyncActive} {
		v := 0.0
		if s == state {
			v = 1
		}
		r.syncState.WithLabelValues(strings.ToLower(s.String())).Set(v)
	}
}

func (r *Recorder) ObserveError(kind domain.ErrorKind) {
	r.errors.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) ObserveOpen()    { r.opens.Inc() }
func (r *Recorder) ObserveRefresh() { r.refreshes.Inc() }
func (r *Recorder) ObserveDropped() { r.dropped.Inc() }
