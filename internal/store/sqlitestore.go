package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // register sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
    name       TEXT PRIMARY KEY,
    doc        BLOB NOT NULL,
    updated_at TEXT NOT NULL
);
`

// SQLiteStore implements TransactionalStore on a single sqlite database,
// one row per collection. Mutual exclusion comes from sqlite's own write
// locking (immediate transactions + busy_timeout) instead of flock, so
// the rest of the engine is unchanged when this backend is selected.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// SQLiteOptions configures OpenSQLite. Zero values fall back to defaults.
type SQLiteOptions struct {
	LockTimeout time.Duration
	Logger      *zap.Logger
}

// OpenSQLite opens or creates the database at the given path.
func OpenSQLite(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(%d)&_txlock=immediate",
		path, opts.LockTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, log: opts.Logger}, nil
}

// WithLock implements TransactionalStore.
func (s *SQLiteStore) WithLock(ctx context.Context, collection string, fn func(doc []byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(fmt.Errorf("beginning transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := s.loadRow(tx.QueryRowContext(ctx, "SELECT doc FROM collections WHERE name = ?", collection), collection)
	if err != nil {
		return err
	}

	out, err := fn(doc)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO collections (name, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		collection, out, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return mapBusy(fmt.Errorf("writing %s: %w", collection, err))
	}
	return mapBusy(tx.Commit())
}

// Load implements TransactionalStore.
func (s *SQLiteStore) Load(ctx context.Context, collection string) ([]byte, error) {
	doc, err := s.loadRow(s.db.QueryRowContext(ctx, "SELECT doc FROM collections WHERE name = ?", collection), collection)
	if err != nil {
		return nil, mapBusy(err)
	}
	return doc, nil
}

// Close implements TransactionalStore.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) loadRow(row *sql.Row, collection string) ([]byte, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, mapBusy(fmt.Errorf("reading %s: %w", collection, err))
	}
	if len(doc) > 0 && !json.Valid(doc) {
		s.log.Warn("corrupt document, starting empty", zap.String("collection", collection))
		return nil, nil
	}
	return doc, nil
}

// mapBusy translates sqlite contention errors into the store's lock
// timeout sentinel so callers see one taxonomy across backends.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "busy") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	return err
}
