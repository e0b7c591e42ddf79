// Package sqlite implements the repository interfaces and the cache key/value
// store on a single SQLite database file.
//
// modernc.org/sqlite is a pure Go port, so the binary needs no C toolchain.
// The same *DB backs the document collections (when store.driver is
// "sqlite") and the local cache table, which is always present.
package sqlite

import (
	"database/sql"
	"fmt"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"

	"github.com/sakif/portfolio/internal/cache"
	"github.com/sakif/portfolio/internal/repository"
)

// DB wraps a sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

var (
	_ repository.Store = (*DB)(nil)
	_ cache.Store      = (*DB)(nil)
)

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/portfolio.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" gets its own empty database,
	// so tests must stay on one connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the cache be read while an admin write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
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

// Name identifies this backend in logs and fallback outcomes.
func (db *DB) Name() string { return "sqlite" }

// Configured is always true; an unopened database has no DB value.
func (db *DB) Configured() bool { return true }

func (db *DB) Projects() repository.ProjectRepository         { return &ProjectDB{conn: db.conn} }
func (db *DB) Certificates() repository.CertificateRepository { return &CertificateDB{conn: db.conn} }
func (db *DB) Comments() repository.CommentRepository         { return &CommentDB{conn: db.conn} }

// migrate creates every table. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_path  TEXT NOT NULL DEFAULT '',
			tech_stack  TEXT NOT NULL DEFAULT '[]',
			features    TEXT NOT NULL DEFAULT '[]',
			github_url  TEXT NOT NULL DEFAULT '',
			demo_url    TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			featured    INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS certificates (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			issuer         TEXT NOT NULL DEFAULT '',
			year           TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			image_path     TEXT NOT NULL DEFAULT '',
			credential_url TEXT NOT NULL DEFAULT '',
			skills         TEXT NOT NULL DEFAULT '[]',
			type           TEXT NOT NULL DEFAULT 'achievement',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_certificates_category ON certificates(category);
	`)
	if err != nil {
		return fmt.Errorf("creating certificates table: %w", err)
	}

	// created_at is nullable: comments imported from older stores may
	// have no server timestamp.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			author_name TEXT NOT NULL,
			is_admin    INTEGER NOT NULL DEFAULT 0,
			is_pinned   INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}

	// credential_url arrived after the first certificates schema.
	if err := db.addColumnIfNotExists("certificates", "credential_url",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding credential_url to certificates: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
