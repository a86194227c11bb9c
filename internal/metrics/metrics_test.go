package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/feedview/internal/app"
	"github.com/bft-labs/feedview/internal/domain"
)

var _ app.Metrics = (*Recorder)(nil)

func TestRecorder_Renders(t *testing.T) {
	r := NewRecorder()

	r.ObserveRender(3)
	r.ObserveRender(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.renders))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.rows))
}

func TestRecorder_SyncStateIsExclusive(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.syncState.WithLabelValues("idle")))

	r.ObserveIndicator(domain.SyncActive)

	assert.Equal(t, 0.0, testutil.ToFloat64(r.syncState.WithLabelValues("idle")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.syncState.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.syncState.WithLabelValues("active")))
}

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.ObserveError(domain.KindMissingLink)
	r.ObserveError(domain.KindMissingLink)
	r.ObserveError(domain.KindDataSourceUnavailable)
	r.ObserveOpen()
	r.ObserveRefresh()
	r.ObserveRefresh()
	r.ObserveDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errors.WithLabelValues("missing_link")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("data_source_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.opens))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.refreshes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dropped))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveRefresh()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "feedview_manual_refreshes_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecorder_Isolated(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveOpen()

	assert.Equal(t, 0.0, testutil.ToFloat64(b.opens))
}
