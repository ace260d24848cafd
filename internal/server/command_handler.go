package server

import (
	"fmt"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case ShowSyntaxTreeCommand:
		return s.showSyntaxTree(context)
	}
	log.Printf("Unknown command %q", params.Command)
	return nil, fmt.Errorf("unknown command %q", params.Command)
}
