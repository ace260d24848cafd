package server_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/provider"
	"github.com/a-k-l-sdao/rholang-lsp/internal/server"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"kr.dev/diff"
)

const uri = "file:///tmp/test.rho"

type notification struct {
	method string
	params any
}

func newServer(t *testing.T, cfg config.Config) (*protocol.Handler, *glsp.Context, *[]notification) {
	t.Helper()
	s, err := server.New(cfg, "test")
	if err != nil {
		t.Fatal(err)
	}
	var sent []notification
	ctx := &glsp.Context{Notify: func(method string, params any) {
		sent = append(sent, notification{method, params})
	}}
	h := s.Handler()
	t.Cleanup(func() { h.Shutdown(ctx) })
	return h, ctx, &sent
}

func open(t *testing.T, h *protocol.Handler, ctx *glsp.Context, text string) {
	t.Helper()
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "rholang", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func docPos(line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func span(sl, sc, el, ec uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: sl, Character: sc},
		End:   protocol.Position{Line: el, Character: ec},
	}
}

func lastDiagnostics(t *testing.T, sent []notification) []protocol.Diagnostic {
	t.Helper()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].method == "textDocument/publishDiagnostics" {
			return sent[i].params.(protocol.PublishDiagnosticsParams).Diagnostics
		}
	}
	t.Fatal("no diagnostics published")
	return nil
}

func TestInitialize(t *testing.T) {
	h, ctx, _ := newServer(t, config.Default())
	res, err := h.Initialize(ctx, &protocol.InitializeParams{
		InitializationOptions: map[string]any{"sync": "full"},
	})
	if err != nil {
		t.Fatal(err)
	}
	result := res.(protocol.InitializeResult)
	diff.Test(t, t.Errorf, result.ServerInfo.Name, server.Name)

	sync := result.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	diff.Test(t, t.Errorf, *sync.Change, protocol.TextDocumentSyncKindFull)

	exec := result.Capabilities.ExecuteCommandProvider
	diff.Test(t, t.Errorf, exec.Commands, []string{server.ShowSyntaxTreeCommand})
}

func TestInitializeIgnoresInvalidOptions(t *testing.T) {
	h, ctx, _ := newServer(t, config.Default())
	res, err := h.Initialize(ctx, &protocol.InitializeParams{
		InitializationOptions: map[string]any{"sync": "sometimes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	sync := res.(protocol.InitializeResult).Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	diff.Test(t, t.Errorf, *sync.Change, protocol.TextDocumentSyncKindIncremental)
}

func TestDiagnosticsFollowEdits(t *testing.T) {
	h, ctx, sent := newServer(t, config.Default())
	open(t, h, ctx, "new x in { x!(1) }")
	diff.Test(t, t.Errorf, len(lastDiagnostics(t, *sent)), 0)

	// Drop the closing parenthesis.
	r := span(0, 15, 0, 16)
	err := h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{Range: &r, Text: ""}},
	})
	if err != nil {
		t.Fatal(err)
	}
	diags := lastDiagnostics(t, *sent)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the unbalanced send")
	}
	diff.Test(t, t.Errorf, *diags[0].Source, "rholang-lsp")
	diff.Test(t, t.Errorf, *diags[0].Severity, protocol.DiagnosticSeverityError)

	err = h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 3},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "new y in { y!(2) }"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, len(lastDiagnostics(t, *sent)), 0)

	err = h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, len(lastDiagnostics(t, *sent)), 0)

	def, err := h.TextDocumentDefinition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: docPos(0, 11)})
	if err != nil {
		t.Fatal(err)
	}
	if def != nil {
		t.Errorf("definition in closed document = %v, want nil", def)
	}
}

func TestChangeBatchSkipsMalformedEvent(t *testing.T) {
	h, ctx, sent := newServer(t, config.Default())
	open(t, h, ctx, "new x in { x!(1) }")

	err := h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "x!(1"},
			"not a change event",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	diags := lastDiagnostics(t, *sent)
	if len(diags) != 1 || diags[0].Message != "Missing `)`" {
		t.Errorf("diagnostics after the batch = %v", diags)
	}
}

func TestOpenAfterShutdown(t *testing.T) {
	h, ctx, sent := newServer(t, config.Default())
	if err := h.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "rholang", Version: 1, Text: "Nil"},
		})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("didOpen after shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("didOpen after shutdown blocked")
	}
	if len(*sent) != 0 {
		t.Errorf("published %v for a document that was not opened", *sent)
	}
}

func TestTreeSitterProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Parser = config.ParserTreeSitter
	if _, err := server.New(cfg, "test"); !errors.Is(err, provider.ErrNoLanguage) {
		t.Fatalf("tree-sitter without a language: got %v, want ErrNoLanguage", err)
	}

	s, err := server.New(cfg, "test", server.WithLanguage(golang.GetLanguage()))
	if err != nil {
		t.Fatal(err)
	}
	var sent []notification
	ctx := &glsp.Context{Notify: func(method string, params any) {
		sent = append(sent, notification{method, params})
	}}
	h := s.Handler()
	defer h.Shutdown(ctx)

	open(t, h, ctx, "package main\n\nfunc f() {}\n")
	diff.Test(t, t.Errorf, len(lastDiagnostics(t, sent)), 0)

	change := func(r protocol.Range, text string) {
		t.Helper()
		err := h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 2},
			ContentChanges: []any{protocol.TextDocumentContentChangeEvent{Range: &r, Text: text}},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	// Rename f to gg, then drop the closing parenthesis.
	change(span(2, 5, 2, 6), "gg")
	diff.Test(t, t.Errorf, len(lastDiagnostics(t, sent)), 0)
	change(span(2, 8, 2, 9), "")
	if len(lastDiagnostics(t, sent)) == 0 {
		t.Error("no diagnostics for an unbalanced parameter list")
	}
}

func TestDefinition(t *testing.T) {
	src := "new x in { /* é */ x!(1) }"
	tests := []struct {
		name     string
		encoding string
		char     uint32
	}{
		{"utf-8", config.EncodingUTF8, 20},
		{"utf-16", config.EncodingUTF16, 19},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.PositionEncoding = test.encoding
			h, ctx, _ := newServer(t, cfg)
			open(t, h, ctx, src)

			got, err := h.TextDocumentDefinition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: docPos(0, test.char)})
			if err != nil {
				t.Fatal(err)
			}
			diff.Test(t, t.Errorf, got, protocol.Location{URI: uri, Range: span(0, 4, 0, 5)})
		})
	}
}

func TestReferencesAndRename(t *testing.T) {
	h, ctx, _ := newServer(t, config.Default())
	open(t, h, ctx, "new x in { x!(1) }")

	refs, err := h.TextDocumentReferences(ctx, &protocol.ReferenceParams{TextDocumentPositionParams: docPos(0, 11)})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, refs, []protocol.Location{
		{URI: uri, Range: span(0, 4, 0, 5)},
		{URI: uri, Range: span(0, 11, 0, 12)},
	})

	prep, err := h.TextDocumentPrepareRename(ctx, &protocol.PrepareRenameParams{TextDocumentPositionParams: docPos(0, 4)})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, prep, span(0, 4, 0, 5))

	edit, err := h.TextDocumentRename(ctx, &protocol.RenameParams{TextDocumentPositionParams: docPos(0, 4), NewName: "chan"})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, edit.Changes[uri], []protocol.TextEdit{
		{Range: span(0, 4, 0, 5), NewText: "chan"},
		{Range: span(0, 11, 0, 12), NewText: "chan"},
	})

	// "new" is a keyword.
	edit, err = h.TextDocumentRename(ctx, &protocol.RenameParams{TextDocumentPositionParams: docPos(0, 1), NewName: "chan"})
	if err != nil {
		t.Fatal(err)
	}
	if edit != nil {
		t.Errorf("rename of keyword = %v, want nil", edit)
	}
}

func TestHover(t *testing.T) {
	h, ctx, _ := newServer(t, config.Default())
	open(t, h, ctx, "new x in { x!(1) }")

	got, err := h.TextDocumentHover(ctx, &protocol.HoverParams{TextDocumentPositionParams: docPos(0, 11)})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("no hover")
	}
	content := got.Contents.(protocol.MarkupContent)
	diff.Test(t, t.Errorf, content.Kind, protocol.MarkupKindMarkdown)
	if !strings.HasPrefix(content.Value, "```rholang\nx\n```") {
		t.Errorf("hover = %q", content.Value)
	}
	diff.Test(t, t.Errorf, *got.Range, span(0, 11, 0, 12))
}

func TestDocumentSymbol(t *testing.T) {
	h, ctx, _ := newServer(t, config.Default())
	open(t, h, ctx, "contract foo(ret) = { new ack in { ret!(1) } }")

	res, err := h.TextDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	syms := res.([]protocol.DocumentSymbol)
	if len(syms) != 1 {
		t.Fatalf("got %d symbols, want 1", len(syms))
	}
	diff.Test(t, t.Errorf, syms[0].Name, "foo")
	diff.Test(t, t.Errorf, syms[0].Kind, protocol.SymbolKindFunction)
	diff.Test(t, t.Errorf, syms[0].SelectionRange, span(0, 9, 0, 12))
	if len(syms[0].Children) != 1 {
		t.Fatalf("got %d children, want 1", len(syms[0].Children))
	}
	diff.Test(t, t.Errorf, syms[0].Children[0].Name, "ack")
	diff.Test(t, t.Errorf, syms[0].Children[0].Kind, protocol.SymbolKindVariable)
}

func TestSemanticTokensUTF16(t *testing.T) {
	cfg := config.Default()
	cfg.PositionEncoding = config.EncodingUTF16
	h, ctx, _ := newServer(t, cfg)
	open(t, h, ctx, `"é"`)

	got, err := h.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Data) != 5 {
		t.Fatalf("data = %v, want one token", got.Data)
	}
	// The string spans four bytes but three utf-16 units.
	diff.Test(t, t.Errorf, got.Data[:3], []protocol.UInteger{0, 0, 3})
}

func TestExecuteCommand(t *testing.T) {
	cfg := config.Default()
	cfg.TreeViewAddress = "127.0.0.1:0"
	h, ctx, sent := newServer(t, cfg)
	open(t, h, ctx, "new x in { x!(1) }")

	res, err := h.WorkspaceExecuteCommand(ctx, &protocol.ExecuteCommandParams{Command: server.ShowSyntaxTreeCommand})
	if err != nil {
		t.Fatal(err)
	}
	url := res.(string)
	if !strings.HasPrefix(url, "http://127.0.0.1:") {
		t.Errorf("url = %q", url)
	}
	last := (*sent)[len(*sent)-1]
	diff.Test(t, t.Errorf, last.method, "window/showDocument")

	if _, err := h.WorkspaceExecuteCommand(ctx, &protocol.ExecuteCommandParams{Command: "nope"}); err == nil {
		t.Error("unknown command succeeded")
	}
}
