package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"kr.dev/diff"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    config.Config
		wantErr bool
	}{
		{"nil keeps defaults", nil, config.Default(), false},
		{
			"overlay",
			map[string]any{"position_encoding": "utf-16", "parser_pool_size": 3},
			func() config.Config {
				c := config.Default()
				c.PositionEncoding = config.EncodingUTF16
				c.ParserPoolSize = 3
				return c
			}(),
			false,
		},
		{"bad encoding", map[string]any{"position_encoding": "utf-32"}, config.Config{}, true},
		{"bad pool", map[string]any{"parser_pool_size": 0}, config.Config{}, true},
		{
			"tree-sitter parser",
			map[string]any{"parser": "tree-sitter"},
			func() config.Config {
				c := config.Default()
				c.Parser = config.ParserTreeSitter
				return c
			}(),
			false,
		},
		{"bad parser", map[string]any{"parser": "yacc"}, config.Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.Load(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			diff.Test(t, t.Errorf, got, tt.want)
		})
	}
}

func TestLoadFromJSON(t *testing.T) {
	got, err := config.LoadFromJSON(strings.NewReader(`{"sync": "full", "file_extensions": [".rho", ".rhox"]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := config.Default()
	want.Sync = config.SyncFull
	want.FileExtensions = []string{".rho", ".rhox"}
	diff.Test(t, t.Errorf, got, want)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "rholang-lsp.yaml")
	if err := os.WriteFile(yml, []byte("index_workers: 8\ntree_view_address: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := config.LoadFile(yml)
	if err != nil {
		t.Fatal(err)
	}
	want := config.Default()
	want.IndexWorkers = 8
	want.TreeViewAddress = ":9000"
	diff.Test(t, t.Errorf, got, want)

	empty := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := config.LoadFile(empty); err != nil {
		t.Fatal(err)
	} else {
		diff.Test(t, t.Errorf, got, config.Default())
	}

	if _, err := config.LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
