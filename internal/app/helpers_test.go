package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (*mockLogger) Debug(msg string, fields ...ports.Field) {}
func (*mockLogger) Info(msg string, fields ...ports.Field)  {}
func (*mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (m *mockLogger) Error(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.errors...)
}

// fakeSource is a DataSource whose notifications are pushed by the test.
type fakeSource struct {
	mu        sync.Mutex
	current   domain.ResultSet
	queryErr  error
	listeners map[string]ports.ChangeFunc
	next      int
	queries   int
	cancelled []string
}

func newFakeSource(entries ...domain.Entry) *fakeSource {
	return &fakeSource{current: domain.NewResultSet(entries...), listeners: map[string]ports.ChangeFunc{}}
}

func (f *fakeSource) Query(_ context.Context, _ domain.Query, onChange ports.ChangeFunc) (ports.Subscription, domain.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return ports.Subscription{}, domain.ResultSet{}, f.queryErr
	}
	f.next++
	id := fmt.Sprintf("sub-%d", f.next)
	f.listeners[id] = onChange
	return ports.Subscription{ID: id}, f.current, nil
}

func (f *fakeSource) Cancel(sub ports.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listeners, sub.ID)
	f.cancelled = append(f.cancelled, sub.ID)
	return nil
}

// Emit delivers rs to every live listener.
func (f *fakeSource) Emit(rs domain.ResultSet, err error) {
	for _, fn := range f.snapshot() {
		fn(rs, err)
	}
}

func (f *fakeSource) snapshot() []ports.ChangeFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.ChangeFunc, 0, len(f.listeners))
	for _, fn := range f.listeners {
		out = append(out, fn)
	}
	return out
}

func (f *fakeSource) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// fakeMonitor is a SyncStatusMonitor driven by the test.
type fakeMonitor struct {
	mu           sync.Mutex
	status       domain.SyncStatus
	subscribeErr error
	listeners    map[string]ports.StatusFunc
	next         int
	unsubscribed []string
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{listeners: map[string]ports.StatusFunc{}}
}

func (f *fakeMonitor) Subscribe(_ context.Context, _ domain.StatusMask, onChange ports.StatusFunc) (ports.StatusHandle, domain.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return ports.StatusHandle{}, domain.SyncStatus{}, f.subscribeErr
	}
	f.next++
	id := fmt.Sprintf("status-%d", f.next)
	f.listeners[id] = onChange
	return ports.StatusHandle{ID: id}, f.status, nil
}

func (f *fakeMonitor) Unsubscribe(h ports.StatusHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listeners, h.ID)
	f.unsubscribed = append(f.unsubscribed, h.ID)
	return nil
}

func (f *fakeMonitor) Emit(pending, active bool) {
	f.mu.Lock()
	f.status = domain.SyncStatus{Pending: pending, Active: active}
	fns := make([]ports.StatusFunc, 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(pending, active)
	}
}

func (f *fakeMonitor) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// countingTrigger counts sync requests.
type countingTrigger struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTrigger) RequestImmediateSync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingTrigger) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type reportedError struct {
	kind    domain.ErrorKind
	message string
}

// recorder implements Renderer, LinkOpener and ErrorReporter.
type recorder struct {
	mu         sync.Mutex
	renders    []domain.ListView // a zero-row view marks an empty render
	empties    int
	indicators []bool
	opened     []string
	reported   []reportedError
	openErr    error
}

func (r *recorder) Render(v domain.ListView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, v)
}

func (r *recorder) RenderEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.empties++
	r.renders = append(r.renders, domain.ListView{})
}

func (r *recorder) SetIndicatorVisible(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indicators = append(r.indicators, v)
}

func (r *recorder) OpenExternalLink(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openErr != nil {
		return r.openErr
	}
	r.opened = append(r.opened, url)
	return nil
}

func (r *recorder) ReportError(kind domain.ErrorKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = append(r.reported, reportedError{kind, message})
}

func (r *recorder) Renders() []domain.ListView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ListView{}, r.renders...)
}

func (r *recorder) Indicators() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool{}, r.indicators...)
}

func (r *recorder) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.opened...)
}

func (r *recorder) Reported() []reportedError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reportedError{}, r.reported...)
}

// Reset forgets everything recorded so far.
func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders, r.empties, r.indicators, r.opened, r.reported = nil, 0, nil, nil, nil
}

var errBoom = errors.New("boom")

func entry(id int64, title, link string, sec int64) domain.Entry {
	return domain.Entry{ID: id, Title: title, Link: link, PublishedAt: time.Unix(sec, 0).UTC()}
}

func titles(v domain.ListView) []string {
	out := make([]string, 0, v.Len())
	for _, r := range v.Rows {
		out = append(out, r.Entry.Title)
	}
	return out
}
