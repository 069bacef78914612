package reminders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS reminders (
	key          TEXT PRIMARY KEY,
	delivered_at INTEGER NOT NULL -- unix nanoseconds
);
CREATE INDEX IF NOT EXISTS reminders_delivered_at ON reminders (delivered_at);
`

// SQLiteLedger persists delivered keys so reminders are not repeated across
// restarts of the dashboard.
type SQLiteLedger struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLedger opens (or creates) the ledger database at dbPath. Use
// ":memory:" for a throwaway database.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// each connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run schema migrations: %w", err)
	}

	return &SQLiteLedger{db: db, now: time.Now}, nil
}

// MarkIfNew inserts key unless present. The insert is a single statement, so
// concurrent callers racing on one key see exactly one true.
func (l *SQLiteLedger) MarkIfNew(ctx context.Context, key string) (bool, error) {
	const q = `INSERT OR IGNORE INTO reminders (key, delivered_at) VALUES (?, ?)`
	res, err := l.db.ExecContext(ctx, q, key, l.now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("record reminder %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record reminder %q: %w", key, err)
	}
	return n == 1, nil
}

// Keys returns every recorded key, sorted
func (l *SQLiteLedger) Keys(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT key FROM reminders ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Prune removes keys delivered strictly before cutoff
func (l *SQLiteLedger) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM reminders WHERE delivered_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune reminders: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
