package index

import (
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("file is not indexed")

// GetFile retrieves a file by path, or returns ErrNotFound.
func (db *DB) GetFile(path string) (*File, error) {
	var f File
	query := `SELECT id, path, checksum, last_updated FROM files WHERE path = ?`
	err := db.Conn.QueryRow(query, path).Scan(&f.ID, &f.Path, &f.Checksum, &f.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve file: %w", err)
	}
	return &f, nil
}

// ReplaceFile stores f and replaces its symbols and diagnostics in one
// transaction.
func (db *DB) ReplaceFile(f File, syms []Symbol, diags []Diagnostic) error {
	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`
		INSERT INTO files (path, checksum, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum = excluded.checksum,
			last_updated = excluded.last_updated
		RETURNING id
	`, f.Path, f.Checksum, f.LastUpdated).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM symbols WHERE file_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete symbols: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM diagnostics WHERE file_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete diagnostics: %w", err)
	}

	symStmt, err := tx.Prepare(`
		INSERT INTO symbols (file_id, name, detail, kind, container, start_line, start_column, end_line, end_column)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare symbol insert statement: %w", err)
	}
	defer symStmt.Close()
	for _, s := range syms {
		if _, err := symStmt.Exec(id, s.Name, s.Detail, s.Kind, s.Container,
			s.StartLine, s.StartColumn, s.EndLine, s.EndColumn); err != nil {
			return fmt.Errorf("failed to insert symbol %q: %w", s.Name, err)
		}
	}

	diagStmt, err := tx.Prepare(`
		INSERT INTO diagnostics (file_id, message, start_line, start_column, end_line, end_column)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostic insert statement: %w", err)
	}
	defer diagStmt.Close()
	for _, d := range diags {
		if _, err := diagStmt.Exec(id, d.Message,
			d.StartLine, d.StartColumn, d.EndLine, d.EndColumn); err != nil {
			return fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteFile removes a file and everything recorded for it.
func (db *DB) DeleteFile(path string) error {
	res, err := db.Conn.Exec(`DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Paths lists the indexed paths in sorted order.
func (db *DB) Paths() ([]string, error) {
	rows, err := db.Conn.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

const symbolColumns = `f.path, s.name, s.detail, s.kind, s.container, s.start_line, s.start_column, s.end_line, s.end_column`

// Symbols returns the symbols of the file at path in document order.
func (db *DB) Symbols(path string) ([]Symbol, error) {
	return db.querySymbols(`
		SELECT `+symbolColumns+`
		FROM symbols s JOIN files f ON f.id = s.file_id
		WHERE f.path = ?
		ORDER BY s.start_line, s.start_column
	`, path)
}

// FindSymbols returns every symbol called name, across all files.
func (db *DB) FindSymbols(name string) ([]Symbol, error) {
	return db.querySymbols(`
		SELECT `+symbolColumns+`
		FROM symbols s JOIN files f ON f.id = s.file_id
		WHERE s.name = ?
		ORDER BY f.path, s.start_line, s.start_column
	`, name)
}

func (db *DB) querySymbols(query string, arg any) ([]Symbol, error) {
	rows, err := db.Conn.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var syms []Symbol
	for rows.Next() {
		var s Symbol
		if err := rows.Scan(&s.Path, &s.Name, &s.Detail, &s.Kind, &s.Container,
			&s.StartLine, &s.StartColumn, &s.EndLine, &s.EndColumn); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		syms = append(syms, s)
	}
	return syms, rows.Err()
}

// Diagnostics returns the diagnostics of the file at path in document order.
func (db *DB) Diagnostics(path string) ([]Diagnostic, error) {
	rows, err := db.Conn.Query(`
		SELECT f.path, d.message, d.start_line, d.start_column, d.end_line, d.end_column
		FROM diagnostics d JOIN files f ON f.id = d.file_id
		WHERE f.path = ?
		ORDER BY d.start_line, d.start_column
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []Diagnostic
	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.Path, &d.Message,
			&d.StartLine, &d.StartColumn, &d.EndLine, &d.EndColumn); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
