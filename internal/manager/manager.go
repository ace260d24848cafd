package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// ErrNotOpen is returned for edits to a URI that is not open.
var ErrNotOpen = errors.New("document not open")

// DocumentManager holds the open documents by URI.
type DocumentManager struct {
	parser syntax.Parser

	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentManager creates a DocumentManager whose documents parse with
// parser.
func NewDocumentManager(parser syntax.Parser) *DocumentManager {
	return &DocumentManager{
		parser: parser,
		docs:   make(map[string]*Document),
	}
}

// Open parses text and registers it under uri, replacing any document
// already open there. Nothing is registered when parsing fails.
func (dm *DocumentManager) Open(ctx context.Context, uri, text string) (*Document, error) {
	doc, err := Open(ctx, dm.parser, text)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.docs[uri] = doc
	return doc, nil
}

// Get returns the document open at uri.
func (dm *DocumentManager) Get(uri string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.docs[uri]
	return doc, ok
}

// Apply applies changes to the document at uri.
func (dm *DocumentManager) Apply(ctx context.Context, uri string, changes []Change) (*Document, error) {
	doc, ok := dm.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, ErrNotOpen)
	}
	return doc, doc.Apply(ctx, changes)
}

// Release forgets the document at uri.
func (dm *DocumentManager) Release(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.docs, uri)
}

// URIs returns the URIs of all open documents in sorted order.
func (dm *DocumentManager) URIs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	uris := make([]string, 0, len(dm.docs))
	for uri := range dm.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// CloseAll forgets every document.
func (dm *DocumentManager) CloseAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.docs = make(map[string]*Document)
}
