package server

import (
	"log"

	"github.com/a-k-l-sdao/rholang-lsp/internal/graph"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// showSyntaxTree starts the tree viewer on first use, publishes every open
// document to it and asks the client to open the page.
func (s *Server) showSyntaxTree(context *glsp.Context) (string, error) {
	log.Println("called 'showSyntaxTree'")
	s.viewerMu.Lock()
	if s.viewer == nil {
		v := graph.NewViewer()
		url, err := v.Serve(s.config.TreeViewAddress)
		if err != nil {
			s.viewerMu.Unlock()
			return "", err
		}
		s.viewer, s.viewerURL = v, url
	}
	v, url := s.viewer, s.viewerURL
	s.viewerMu.Unlock()

	for _, uri := range s.manager.URIs() {
		doc, ok := s.manager.Get(uri)
		if !ok {
			continue
		}
		if err := v.Publish(uri, doc.Snapshot().Tree); err != nil {
			log.Printf("Error publishing tree of %s: %v", uri, err)
		}
	}

	context.Notify(
		"window/showDocument",
		protocol.ShowDocumentParams{
			URI:      protocol.URI(url),
			External: &protocol.True,
		},
	)
	return url, nil
}

// treeViewer returns the running viewer, or nil before the first
// showSyntaxTree.
func (s *Server) treeViewer() *graph.Viewer {
	s.viewerMu.Lock()
	defer s.viewerMu.Unlock()
	return s.viewer
}
