package server

import (
	"fmt"
	"sync"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/graph"
	"github.com/a-k-l-sdao/rholang-lsp/internal/manager"
	"github.com/a-k-l-sdao/rholang-lsp/internal/provider"
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Name is reported to clients as the server name.
const Name = "rholang-lsp"

type Server struct {
	handler *protocol.Handler
	version string
	config  config.Config

	language *sitter.Language
	parsers  *syntax.Pool
	manager  *manager.DocumentManager

	viewerMu  sync.Mutex
	viewer    *graph.Viewer
	viewerURL string
}

// Option customizes a Server.
type Option func(*Server)

// WithLanguage supplies the grammar used when the tree-sitter parser is
// configured.
func WithLanguage(lang *sitter.Language) Option {
	return func(s *Server) {
		s.language = lang
	}
}

// New creates the language server state for cfg without a transport.
func New(cfg config.Config, version string, opts ...Option) (*Server, error) {
	s := &Server{version: version}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.configure(cfg); err != nil {
		return nil, err
	}
	s.handler = &protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentReferences:         s.textDocumentReferences,
		TextDocumentPrepareRename:      s.textDocumentPrepareRename,
		TextDocumentRename:             s.textDocumentRename,
		TextDocumentDocumentSymbol:     s.textDocumentDocumentSymbol,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		WorkspaceExecuteCommand:        s.workspaceExecuteCommand,
	}
	return s, nil
}

// NewServer wraps a new language server in a glsp transport.
func NewServer(cfg config.Config, version string, opts ...Option) (*server.Server, error) {
	s, err := New(cfg, version, opts...)
	if err != nil {
		return nil, err
	}
	return server.NewServer(s.handler, Name, false), nil
}

// Handler returns the protocol handler table.
func (s *Server) Handler() *protocol.Handler {
	return s.handler
}

// configure applies cfg, replacing the parser pool and forgetting open
// documents when the parser or the pool size changes. On error nothing
// changes.
func (s *Server) configure(cfg config.Config) error {
	if s.parsers != nil && cfg.ParserPoolSize == s.config.ParserPoolSize && cfg.Parser == s.config.Parser {
		s.config = cfg
		return nil
	}
	pool, err := provider.NewPool(cfg.Parser, cfg.ParserPoolSize, s.language)
	if err != nil {
		return fmt.Errorf("failed to create parser pool: %w", err)
	}
	if s.parsers != nil {
		s.parsers.Close()
	}
	s.config = cfg
	s.parsers = pool
	s.manager = manager.NewDocumentManager(pool)
	return nil
}
