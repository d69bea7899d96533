package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/samber/mo"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS history (
	uri TEXT PRIMARY KEY,
	position_ms INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	watched_at_ms INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_history_watched ON history(watched_at_ms);
`

// SQLiteStore keeps entries in a WAL-mode SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path, 5*time.Second)
	if err != nil {
		return nil, unavailable("open", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate", err)
	}

	return s, nil
}

func openSQLite(path string, busy time.Duration) (*sql.DB, error) {
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	// a single writer keeps upserts serialized
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	if version >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schema); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, uri string) (mo.Option[Entry], error) {
	const query = `SELECT position_ms, duration_ms, watched_at_ms, title FROM history WHERE uri = ?`

	entry := Entry{URI: uri}
	err := s.db.QueryRowContext(ctx, query, uri).Scan(
		&entry.PositionMillis, &entry.DurationMillis, &entry.TimestampMillis, &entry.Title,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[Entry](), nil
	}
	if err != nil {
		return mo.None[Entry](), unavailable("read", err)
	}

	return mo.Some(entry), nil
}

func (s *SQLiteStore) Set(ctx context.Context, uri string, entry Entry) error {
	const query = `
	INSERT INTO history (uri, position_ms, duration_ms, watched_at_ms, title)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(uri) DO UPDATE SET
		position_ms = excluded.position_ms,
		duration_ms = excluded.duration_ms,
		watched_at_ms = excluded.watched_at_ms,
		title = excluded.title
	`

	_, err := s.db.ExecContext(ctx, query,
		uri, entry.PositionMillis, entry.DurationMillis, entry.TimestampMillis, entry.Title,
	)
	if err != nil {
		return unavailable("write", err)
	}

	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	const query = `SELECT uri, position_ms, duration_ms, watched_at_ms, title FROM history ORDER BY watched_at_ms DESC, uri ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable("read", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URI, &e.PositionMillis, &e.DurationMillis, &e.TimestampMillis, &e.Title); err != nil {
			return nil, unavailable("read", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("read", err)
	}

	return entries, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, uri string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE uri = ?`, uri); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
