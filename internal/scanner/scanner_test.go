package scanner_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/a-k-l-sdao/rholang-lsp/internal/scanner"
	"kr.dev/diff"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.rho":           "Nil",
		"lib/b.rho":       "new x in { Nil }",
		"lib/notes.txt":   "ignored",
		".git/c.rho":      "hidden dir",
		"lib/.d.rho":      "hidden file",
		"lib/deep/e.rho":  "skipped by predicate",
		"lib/deep/f.rhox": "other extension",
	})

	var mu sync.Mutex
	got := map[string]string{}
	err := scanner.Scan(context.Background(), root, []string{".rho"}, 3,
		func(path string, _ fs.FileInfo) bool { return strings.HasSuffix(path, "e.rho") },
		func(path string, doc []byte) error {
			rel, _ := filepath.Rel(root, path)
			mu.Lock()
			defer mu.Unlock()
			got[filepath.ToSlash(rel)] = string(doc)
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got, map[string]string{
		"a.rho":     "Nil",
		"lib/b.rho": "new x in { Nil }",
	})
}

func TestScanCallbackError(t *testing.T) {
	root := writeTree(t, map[string]string{"a.rho": "Nil", "b.rho": "Nil"})
	boom := errors.New("boom")

	var mu sync.Mutex
	var seen []string
	err := scanner.Scan(context.Background(), root, []string{".rho"}, 1, nil, func(path string, _ []byte) error {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if len(seen) == 0 {
		t.Error("callback never ran")
	}
}
