// Package provider builds the parser pool named by the configuration.
package provider

import (
	"errors"
	"fmt"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/rholang"
	"github.com/a-k-l-sdao/rholang-lsp/internal/sitteradapter"
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNoLanguage is returned when the tree-sitter provider is selected but no
// grammar was supplied.
var ErrNoLanguage = errors.New("tree-sitter parser selected without a language")

// Factory returns a constructor for the parser called name. lang is only
// used by the tree-sitter provider.
func Factory(name string, lang *sitter.Language) (func() (syntax.Parser, error), error) {
	switch name {
	case config.ParserNative:
		return func() (syntax.Parser, error) {
			return rholang.NewParser(), nil
		}, nil
	case config.ParserTreeSitter:
		if lang == nil {
			return nil, ErrNoLanguage
		}
		return func() (syntax.Parser, error) {
			return sitteradapter.NewParser(lang), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown parser %q", name)
}

// NewPool creates a pool of size parsers of the kind named by name.
func NewPool(name string, size int, lang *sitter.Language) (*syntax.Pool, error) {
	newParser, err := Factory(name, lang)
	if err != nil {
		return nil, err
	}
	return syntax.NewPool(size, newParser)
}
