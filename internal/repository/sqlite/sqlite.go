// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works, and ":memory:" databases
// make the tests fast and self-contained.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// sql.DB is a pool, not a single connection — it is safe for concurrent use
// by independent requests, which is what lets the listing path run its count
// and data queries in parallel.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" for tests) and runs
// migrations.
//
// The pragmas ride in the DSN rather than a one-off Exec because sql.DB is
// a pool: an Exec'd PRAGMA only configures whichever connection happened to
// run it, while DSN pragmas apply to every connection the pool opens.
// Foreign keys are OFF by default in SQLite and the favorites/comments
// cascade on article deletion depends on FK enforcement. WAL allows reads
// to proceed while a write is in progress.
func New(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" would get its own empty database, so
	// the pool must be pinned to a single connection there. Concurrent
	// queries still work; database/sql queues them.
	if strings.Contains(dbPath, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			bio           TEXT NOT NULL DEFAULT '',
			image         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tag_list holds a JSON array of strings; the tag filter queries it
	// with json_each. favorites_count is the denormalized counter kept in
	// step with the favorites table inside each favorite transaction.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id              TEXT PRIMARY KEY,
			slug            TEXT NOT NULL UNIQUE,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			body            TEXT NOT NULL DEFAULT '',
			tag_list        TEXT NOT NULL DEFAULT '[]',
			favorites_count INTEGER NOT NULL DEFAULT 0,
			author_id       TEXT NOT NULL REFERENCES users(id),
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id);
		CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS follows (
			follower_id  TEXT NOT NULL REFERENCES users(id),
			following_id TEXT NOT NULL REFERENCES users(id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, following_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating follows table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, article_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating favorites table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			author_id  TEXT NOT NULL REFERENCES users(id),
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id);
		CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint rejection on
// the given constraint (identified by its "table.column" name).
//
// The pre-write existence checks in the service layer are only a courtesy
// for the common case; under concurrent requests two writers can both pass
// the check, and then this rejection is the authoritative signal. The driver
// names the violated columns in the error text ("UNIQUE constraint failed:
// articles.slug"), which is what lets us map a known constraint to Conflict
// and leave everything else to surface as an internal failure.
func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, constraint)
}
