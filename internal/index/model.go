package index

import "database/sql"

// DB manages the SQLite connection of a symbol index.
type DB struct {
	Conn *sql.DB
}

// File is one indexed source file.
type File struct {
	ID          int64
	Path        string
	Checksum    []byte
	LastUpdated int64
}

// Symbol is an outline entry of an indexed file. Container names the
// enclosing contract, if any.
type Symbol struct {
	Path      string
	Name      string
	Detail    string
	Kind      string
	Container string
	Span
}

// Diagnostic is a syntax error recorded for an indexed file.
type Diagnostic struct {
	Path    string
	Message string
	Span
}

// Span is a zero-based line and byte column range.
type Span struct {
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
}
