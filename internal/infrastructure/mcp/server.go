// Package mcp exposes the dashboard core to MCP clients.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Server serves hireline tools over MCP.
type Server struct {
	mcpServer *mcp.Server
	dash      *application.Dashboard
	synth     *synth.Synthesizer
}

// mcpErr returns a user-facing error; internal details stay in the logs.
func mcpErr(friendly string) error {
	return errors.New(friendly)
}

// NewServer registers the hireline tools against dash. The dashboard is
// owned by the caller.
func NewServer(dash *application.Dashboard, synthesizer *synth.Synthesizer) (*Server, error) {
	if dash == nil {
		return nil, fmt.Errorf("dashboard is required")
	}
	if synthesizer == nil {
		synthesizer = synth.Default()
	}

	info := mcp.ServerInfo{
		Name:    "hireline",
		Version: Version,
	}
	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Hireline MCP Server"),
			mcp.WithDescription("Hireline exposes the live recruiting dashboard: KPIs, the audit trail, synthetic fixtures and the assistant."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Read the snapshot and audit tools first; commands change backend state and refresh the snapshot."),
		),
		dash:  dash,
		synth: synthesizer,
	}

	s.registerTools()
	s.registerSchemaResource()
	s.registerOpenAPIResource()
	return s, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
