package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
)

// fakeDriver serves canned rows so the scan and refresh paths can run
// without a server. Each DSN names one fakeTable.
type fakeDriver struct{}

var (
	fakeMu     sync.Mutex
	fakeTables = map[string]*fakeTable{}
)

func init() {
	sql.Register("feedview-fake", fakeDriver{})
}

type fakeTable struct {
	mu      sync.Mutex
	rows    [][]driver.Value
	err     error
	queries []string
}

func (t *fakeTable) Set(rows [][]driver.Value, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows, t.err = rows, err
}

func (t *fakeTable) Queries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.queries...)
}

func newFakeDB(t *testing.T) (*sql.DB, *fakeTable) {
	t.Helper()
	table := &fakeTable{}
	fakeMu.Lock()
	fakeTables[t.Name()] = table
	fakeMu.Unlock()
	t.Cleanup(func() {
		fakeMu.Lock()
		delete(fakeTables, t.Name())
		fakeMu.Unlock()
	})
	db, err := sql.Open("feedview-fake", t.Name())
	if err != nil {
		t.Fatal(err)
	}
	return db, table
}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	fakeMu.Lock()
	defer fakeMu.Unlock()
	table, ok := fakeTables[name]
	if !ok {
		return nil, errors.New("unknown fake table " + name)
	}
	return &fakeConn{table: table}, nil
}

type fakeConn struct {
	table *fakeTable
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions not supported") }

func (c *fakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.table.mu.Lock()
	defer c.table.mu.Unlock()
	c.table.queries = append(c.table.queries, query)
	if c.table.err != nil {
		return nil, c.table.err
	}
	return &fakeRows{rows: append([][]driver.Value{}, c.table.rows...)}, nil
}

type fakeRows struct {
	rows [][]driver.Value
}

func (r *fakeRows) Columns() []string {
	return []string{"id", "title", "link", "published_at"}
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if len(r.rows) == 0 {
		return io.EOF
	}
	copy(dest, r.rows[0])
	r.rows = r.rows[1:]
	return nil
}
