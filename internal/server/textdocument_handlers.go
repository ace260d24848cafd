package server

import (
	"context"
	"fmt"
	"log"

	"github.com/a-k-l-sdao/rholang-lsp/internal/diagnostics"
	"github.com/a-k-l-sdao/rholang-lsp/internal/manager"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	ctx *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc, err := s.manager.Open(context.Background(), uri, params.TextDocument.Text)
	if err != nil {
		log.Printf("Not tracking %s: %v", uri, err)
		return nil
	}
	s.afterEdit(ctx, uri, doc)
	return nil
}

func (s *Server) textDocumentDidChange(
	ctx *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc, ok := s.manager.Get(uri)
	if !ok {
		log.Printf("Change for unknown document %s", uri)
		return nil
	}

	for _, raw := range params.ContentChanges {
		change, err := s.toChange(doc.Text(), raw)
		if err != nil {
			log.Printf("Skipping change to %s: %v", uri, err)
			continue
		}
		if _, err := s.manager.Apply(context.Background(), uri, []manager.Change{change}); err != nil {
			// The text is current; the tree stays at its last good parse.
			log.Printf("Error applying change to %s: %v", uri, err)
		}
	}
	s.afterEdit(ctx, uri, doc)
	return nil
}

// toChange converts one content change event, whose range is in the
// client's encoding over text.
func (s *Server) toChange(text string, raw any) (manager.Change, error) {
	switch change := raw.(type) {
	case protocol.TextDocumentContentChangeEvent:
		if change.Range == nil {
			return manager.Change{Text: change.Text}, nil
		}
		r := newPositions(s.config.PositionEncoding, text).managerRange(*change.Range)
		return manager.Change{Range: &r, Text: change.Text}, nil
	case protocol.TextDocumentContentChangeEventWhole:
		return manager.Change{Text: change.Text}, nil
	}
	return manager.Change{}, fmt.Errorf("unexpected change event type %T", raw)
}

func (s *Server) textDocumentDidClose(
	ctx *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	s.manager.Release(uri)
	publishDiagnostics(ctx, uri, []protocol.Diagnostic{})

	if v := s.treeViewer(); v != nil {
		if err := v.Forget(uri); err != nil {
			log.Printf("Error removing %s from the tree viewer: %v", uri, err)
		}
	}
	return nil
}

// afterEdit pushes the diagnostics of the current tree and updates the
// tree viewer.
func (s *Server) afterEdit(ctx *glsp.Context, uri string, doc *manager.Document) {
	snap := doc.Snapshot()
	pos := newPositions(s.config.PositionEncoding, snap.Text)

	severity := protocol.DiagnosticSeverityError
	source := diagnostics.Source
	diags := []protocol.Diagnostic{}
	for _, d := range diagnostics.Collect(snap.Tree) {
		diags = append(diags, protocol.Diagnostic{
			Range:    pos.rangeOf(d.Start, d.End),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	publishDiagnostics(ctx, uri, diags)

	if v := s.treeViewer(); v != nil {
		if err := v.Publish(uri, snap.Tree); err != nil {
			log.Printf("Error publishing tree of %s: %v", uri, err)
		}
	}
}

func publishDiagnostics(
	context *glsp.Context,
	uri string,
	diagnostics []protocol.Diagnostic,
) {
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
