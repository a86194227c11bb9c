package postgres

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/bft-labs/feedview/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
    id           BIGINT PRIMARY KEY,
    title        TEXT NOT NULL,
    link         TEXT,
    published_at TIMESTAMPTZ NOT NULL,
    inserted_at  BIGSERIAL
);
CREATE INDEX IF NOT EXISTS entries_published_idx ON entries (published_at DESC, inserted_at ASC);
CREATE OR REPLACE FUNCTION feedview_notify_entries() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify(TG_ARGV[0], TG_OP);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;
`

const upsertSQL = `INSERT INTO entries (id, title, link, published_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, link = EXCLUDED.link, published_at = EXCLUDED.published_at`

func triggerSQL(channel string) string {
	return fmt.Sprintf(`
DROP TRIGGER IF EXISTS entries_notify ON entries;
CREATE TRIGGER entries_notify AFTER INSERT OR UPDATE OR DELETE OR TRUNCATE ON entries
    FOR EACH STATEMENT EXECUTE FUNCTION feedview_notify_entries(%s);
`, pq.QuoteLiteral(channel))
}

var sortColumns = map[domain.Column]string{
	domain.ColumnID:        "id",
	domain.ColumnTitle:     "title",
	domain.ColumnLink:      "link",
	domain.ColumnPublished: "published_at",
}

// selectSQL builds the query for q. Ties keep insertion order.
func selectSQL(q domain.Query) (string, []interface{}) {
	col, ok := sortColumns[q.SortKey]
	if !ok {
		col = "published_at"
	}
	dir := "DESC"
	if q.Order == domain.Ascending {
		dir = "ASC"
	}
	stmt := fmt.Sprintf("SELECT id, title, link, published_at FROM entries ORDER BY %s %s, inserted_at ASC", pq.QuoteIdentifier(col), dir)
	if q.Limit > 0 {
		return stmt + " LIMIT $1", []interface{}{q.Limit}
	}
	return stmt, nil
}
