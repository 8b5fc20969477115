package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "1.0.0"

// Serve starts the MCP stdio server with all tools registered.
func Serve(deps Deps) error {
	return server.ServeStdio(newServer(deps))
}

func newServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"dicebox",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	registerTools(s, deps)

	return s
}
