package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/provider"
	"github.com/smacker/go-tree-sitter/golang"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		name   string
		parser string
		src    string
		root   string
	}{
		{"native", config.ParserNative, "new x in { x!(1) }", "source_file"},
		{"tree-sitter", config.ParserTreeSitter, "package main\n", "source_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := provider.NewPool(tt.parser, 2, golang.GetLanguage())
			if err != nil {
				t.Fatal(err)
			}
			defer pool.Close()

			tree, err := pool.Parse(context.Background(), []byte(tt.src), nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := tree.Root(); got.Type() != tt.root || got.HasError() {
				t.Errorf("root = %s", got)
			}
		})
	}
}

func TestNewPoolErrors(t *testing.T) {
	if _, err := provider.NewPool(config.ParserTreeSitter, 1, nil); !errors.Is(err, provider.ErrNoLanguage) {
		t.Errorf("tree-sitter without a language: got %v, want ErrNoLanguage", err)
	}
	if _, err := provider.Factory("yacc", nil); err == nil {
		t.Error("unknown parser accepted")
	}
}
