// Package mcptools exposes the console operations as MCP tools so that an
// AI assistant can check, start, stop and talk to game servers.
package mcptools

import (
	"servctl/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server carrying every tool of b.
func NewServer(b Backend, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"servctl",
		version,
		server.WithToolCapabilities(false),
	)
	tools := NewTools(b).ServerTools()
	s.AddTools(tools...)
	logging.Debug("MCP", "Registered %d tools", len(tools))
	return s
}

// ServeStdio serves s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	logging.Info("MCP", "Serving servctl tools over stdio")
	return server.ServeStdio(s)
}
