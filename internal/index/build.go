package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a-k-l-sdao/rholang-lsp/internal/diagnostics"
	"github.com/a-k-l-sdao/rholang-lsp/internal/scanner"
	"github.com/a-k-l-sdao/rholang-lsp/internal/symbols"
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	"github.com/zeebo/xxh3"
)

// Checksum hashes file contents for change detection.
func Checksum(data []byte) []byte {
	sum := xxh3.Hash128(data).Bytes()
	return sum[:]
}

// Stats counts what an Update did.
type Stats struct {
	Indexed   int
	Unchanged int
	Removed   int
}

// Options configures an Update.
type Options struct {
	Extensions []string
	Workers    int
}

// Update indexes every source file under root whose contents changed since
// it was last indexed and forgets indexed files under root that no longer
// exist. parser must be safe for concurrent use, such as a *syntax.Pool.
func (db *DB) Update(ctx context.Context, parser syntax.Parser, root string, opts Options) (Stats, error) {
	var (
		mu    sync.Mutex
		stats Stats
		seen  = map[string]struct{}{}
	)
	now := time.Now().Unix()

	err := scanner.Scan(ctx, root, opts.Extensions, opts.Workers, nil, func(path string, data []byte) error {
		mu.Lock()
		seen[path] = struct{}{}
		mu.Unlock()

		sum := Checksum(data)
		old, err := db.GetFile(path)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if old != nil && bytes.Equal(old.Checksum, sum) {
			mu.Lock()
			stats.Unchanged++
			mu.Unlock()
			return nil
		}

		tree, err := parser.Parse(ctx, data, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to parse: %w", err)
		}
		file := File{Path: path, Checksum: sum, LastUpdated: now}
		if err := db.ReplaceFile(file, flattenSymbols(path, "", symbols.Collect(tree)), convertDiagnostics(path, diagnostics.Collect(tree))); err != nil {
			return err
		}
		mu.Lock()
		stats.Indexed++
		mu.Unlock()
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to index %s: %w", root, err)
	}

	paths, err := db.Paths()
	if err != nil {
		return stats, err
	}
	prefix := filepath.Clean(root) + string(filepath.Separator)
	for _, p := range paths {
		if _, ok := seen[p]; ok || !strings.HasPrefix(p, prefix) {
			continue
		}
		if err := db.DeleteFile(p); err != nil && !errors.Is(err, ErrNotFound) {
			return stats, err
		}
		log.Printf("index: removed %s", p)
		stats.Removed++
	}
	return stats, nil
}

func flattenSymbols(path, container string, syms []symbols.Symbol) []Symbol {
	var out []Symbol
	for _, s := range syms {
		kind := "variable"
		if s.Kind == symbols.Function {
			kind = "function"
		}
		start, end := s.Node.StartPoint(), s.Node.EndPoint()
		out = append(out, Symbol{
			Path:      path,
			Name:      s.Name,
			Detail:    s.Detail,
			Kind:      kind,
			Container: container,
			Span:      Span{start.Row, start.Column, end.Row, end.Column},
		})
		out = append(out, flattenSymbols(path, s.Name, s.Children)...)
	}
	return out
}

func convertDiagnostics(path string, diags []diagnostics.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, Diagnostic{
			Path:    path,
			Message: d.Message,
			Span:    Span{d.Start.Row, d.Start.Column, d.End.Row, d.End.Column},
		})
	}
	return out
}
