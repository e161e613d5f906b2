package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// SchemaVersion is the tool schema version (semver).
const SchemaVersion = "1.0.0"

const (
	schemaURI      = "hireline://schema"
	eventSchemaURI = "hireline://schema/audit-event"
)

type schemaResponse struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("Tool schema version and the registered tools").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			resp := schemaResponse{SchemaVersion: SchemaVersion, ServerVersion: Version}
			for _, t := range s.mcpServer.Tools() {
				resp.Tools = append(resp.Tools, t.Name)
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{URI: schemaURI, MimeType: "application/json", Text: string(data)}, nil
		})

	s.mcpServer.Resource(eventSchemaURI).
		Name(eventSchemaURI).
		Description("JSON Schema that pushed audit events are validated against").
		MimeType("application/schema+json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			return &mcplib.ResourceContent{
				URI:      eventSchemaURI,
				MimeType: "application/schema+json",
				Text:     audit.EventSchemaJSON,
			}, nil
		})
}
