package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/felixgeelhaar/mcp-go"
)

const openAPIURI = "hireline://openapi"

// OpenAPISpec is a minimal OpenAPI 3.0 document describing the tools as
// POST endpoints.
type OpenAPISpec struct {
	OpenAPI string              `json:"openapi"`
	Info    OpenAPIInfo         `json:"info"`
	Paths   map[string]PathItem `json:"paths"`
}

type OpenAPIInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type PathItem struct {
	Post *Operation `json:"post,omitempty"`
}

type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
	Tags        []string            `json:"tags,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema any `json:"schema"`
}

type Response struct {
	Description string `json:"description"`
}

// OpenAPI returns the document for this server's tools.
func (s *Server) OpenAPI() ([]byte, error) {
	return GenerateOpenAPI(s.mcpServer)
}

// GenerateOpenAPI maps each tool of srv to POST /tools/{name}. Tools whose
// input schema has properties get a JSON request body.
func GenerateOpenAPI(srv *mcplib.Server) ([]byte, error) {
	tools := srv.Tools()

	paths := make(map[string]PathItem, len(tools))
	for _, t := range tools {
		op := Operation{
			OperationID: t.Name,
			Summary:     t.Description,
			Responses: map[string]Response{
				"200": {Description: "Tool result"},
				"400": {Description: "Invalid arguments"},
				"500": {Description: "Tool failed"},
			},
			Tags: []string{"hireline"},
		}
		if hasProperties(t.InputSchema) {
			op.RequestBody = &RequestBody{
				Required: true,
				Content:  map[string]MediaType{"application/json": {Schema: t.InputSchema}},
			}
		}
		paths[fmt.Sprintf("/tools/%s", t.Name)] = PathItem{Post: &op}
	}

	return json.MarshalIndent(OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: OpenAPIInfo{
			Title:       "Hireline MCP API",
			Description: "Hireline dashboard tools.",
			Version:     SchemaVersion,
		},
		Paths: paths,
	}, "", "  ")
}

func (s *Server) registerOpenAPIResource() {
	s.mcpServer.Resource(openAPIURI).
		Name(openAPIURI).
		Description("OpenAPI 3.0 view of the tools").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := s.OpenAPI()
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{URI: openAPIURI, MimeType: "application/json", Text: string(data)}, nil
		})
}

func hasProperties(schema any) bool {
	m, ok := schema.(map[string]any)
	if !ok {
		return false
	}
	props, ok := m["properties"].(map[string]any)
	return ok && len(props) > 0
}
