package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Database schema version
const SchemaVersion = 1

// NewDB opens the SQLite database at dbPath and creates the tables if they
// don't exist.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	conn.SetMaxOpenConns(1)

	db := &DB{Conn: conn}
	if err := db.setup(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	return db, nil
}

// setup creates tables if they don't exist and records the schema version.
func (db *DB) setup() error {
	if _, err := db.Conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	var version int
	if err := db.Conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than %d", version, SchemaVersion)
	}

	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.createTables(tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) createTables(tx *sql.Tx) error {
	createFilesTable := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		checksum BLOB NOT NULL,
		last_updated INTEGER NOT NULL
	);
	`

	createSymbolsTable := `
	CREATE TABLE IF NOT EXISTS symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		detail TEXT NOT NULL,
		kind TEXT NOT NULL,
		container TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		start_column INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_column INTEGER NOT NULL,
		FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS symbols_name ON symbols(name);
	`

	createDiagnosticsTable := `
	CREATE TABLE IF NOT EXISTS diagnostics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		start_column INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_column INTEGER NOT NULL,
		FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	`

	for name, stmt := range map[string]string{
		"files":       createFilesTable,
		"symbols":     createSymbolsTable,
		"diagnostics": createDiagnosticsTable,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create %s table: %w", name, err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.Conn.Close()
}
