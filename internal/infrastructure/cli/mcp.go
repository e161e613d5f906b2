package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/hireline/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Hireline MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("HIRELINE_SKIP_MCP_START") == "true" {
			return nil
		}
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		inframcp.Version, inframcp.BuildCommit, inframcp.BuildDate = Version, Commit, Date
		server, err := inframcp.NewServer(services.Dashboard, services.Synth)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		if err := services.Dashboard.Start(cmd.Context()); err != nil {
			services.Logger.Warn("first refresh incomplete", "error", err)
		}

		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			err = server.ServeStdio(cmd.Context())
		case "http":
			err = server.ServeHTTP(cmd.Context(), mcpAddr)
		case "ws", "websocket":
			err = server.ServeWebSocket(cmd.Context(), mcpAddr)
		default:
			return NewCLIError("unsupported transport: "+mcpTransport, "Use --transport stdio, http or ws", nil)
		}
		if err != nil && cmd.Context().Err() == nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Generate an OpenAPI 3.0 spec from the MCP tool registrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		srv, err := inframcp.NewServer(services.Dashboard, services.Synth)
		if err != nil {
			return MapError(fmt.Errorf("failed to initialize server: %w", err))
		}
		data, err := srv.OpenAPI()
		if err != nil {
			return MapError(fmt.Errorf("failed to generate OpenAPI spec: %w", err))
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws transports")
	mcpCmd.AddCommand(openapiCmd)
	RootCmd.AddCommand(mcpCmd)
}
