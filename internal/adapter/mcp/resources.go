package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"praxis://matters",
			"Matter List",
			mcplib.WithResourceDescription("All legal matters visible to the caller's tenant"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleMattersResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"praxis://providers",
			"LLM Providers",
			mcplib.WithResourceDescription("Configured LLM providers and their health"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleProvidersResource,
	)
}

func (s *Server) handleMattersResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Matters == nil {
		return jsonResource(req.Params.URI, `{"error":"matter reader not configured"}`), nil
	}
	matters, err := s.deps.Matters.List(ctx, "")
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(matters)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func (s *Server) handleProvidersResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Providers == nil {
		return jsonResource(req.Params.URI, `{"error":"provider lister not configured"}`), nil
	}
	data, err := json.Marshal(s.deps.Providers.Providers())
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func jsonResource(uri, text string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}
}
