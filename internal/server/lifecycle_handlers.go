package server

import (
	"log"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/tokens"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ShowSyntaxTreeCommand opens the live syntax-tree viewer.
const ShowSyntaxTreeCommand = "rholang.showSyntaxTree"

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	cfg, err := s.config.Overlay(params.InitializationOptions)
	if err != nil {
		log.Printf("Ignoring initializationOptions: %v", err)
		cfg = s.config
	}
	if err := s.configure(cfg); err != nil {
		log.Printf("Ignoring initializationOptions: %v", err)
	}
	log.Printf("Config: %+v", s.config)

	syncKind := protocol.TextDocumentSyncKindIncremental
	if s.config.Sync == config.SyncFull {
		syncKind = protocol.TextDocumentSyncKindFull
	}

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.RenameProvider = &protocol.RenameOptions{PrepareProvider: &protocol.True}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokens.Legend,
			TokenModifiers: []string{},
		},
		Full: true,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ShowSyntaxTreeCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	return nil
}

func (s *Server) setTrace(
	context *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	s.manager.CloseAll()
	s.viewerMu.Lock()
	if s.viewer != nil {
		if err := s.viewer.Close(); err != nil {
			log.Printf("Error closing tree viewer: %v", err)
		}
		s.viewer, s.viewerURL = nil, ""
	}
	s.viewerMu.Unlock()
	return s.parsers.Close()
}
