package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite package-operation journal.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the journal database in dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dbPath := filepath.Join(dir, "journal.db")
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	j := &DB{db: sqlDB, path: dbPath}
	if err := j.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the database.
func (j *DB) Close() error {
	return j.db.Close()
}

// Path returns the path to the journal database file.
func (j *DB) Path() string {
	return j.path
}

func (j *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS package_ops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_serial TEXT NOT NULL,
		package TEXT NOT NULL,
		action TEXT NOT NULL,
		success INTEGER NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_package_ops_device ON package_ops(device_serial, package);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
