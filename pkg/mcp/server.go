// Package mcp exposes the hireline MCP server for embedding in other
// programs.
package mcp

import (
	infra "github.com/felixgeelhaar/hireline/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// Server exposes the MCP server implementation from the infrastructure layer.
type Server = infra.Server

// NewServer constructs an MCP server over a running dashboard. A nil
// synthesizer uses the built-in reference tables.
func NewServer(dash *application.Dashboard, synthesizer *synth.Synthesizer) (*Server, error) {
	return infra.NewServer(dash, synthesizer)
}
