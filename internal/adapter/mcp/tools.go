package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/middleware"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listMattersTool(),
		s.getContractTool(),
		s.analyzeContractTool(),
		s.getAnalysisTool(),
		s.draftDocumentTool(),
	)
}

func (s *Server) listMattersTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_matters",
		mcplib.WithDescription("List legal matters, optionally filtered by client"),
		mcplib.WithString("client_id",
			mcplib.Description("Only return matters for this client"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListMatters}
}

func (s *Server) getContractTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_contract",
		mcplib.WithDescription("Get a contract by ID, including its full text"),
		mcplib.WithString("contract_id",
			mcplib.Required(),
			mcplib.Description("The contract ID to look up"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetContract}
}

func (s *Server) analyzeContractTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("analyze_contract",
		mcplib.WithDescription("Start an AI analysis of a contract. Returns the pending analysis; poll with get_analysis"),
		mcplib.WithString("contract_id",
			mcplib.Required(),
			mcplib.Description("The contract to analyze"),
		),
		mcplib.WithString("kind",
			mcplib.Required(),
			mcplib.Description("Analysis kind: risk_review, clause_extraction, or summary"),
		),
		mcplib.WithString("provider",
			mcplib.Description("Explicit LLM provider; empty auto-selects"),
		),
		mcplib.WithBoolean("consensus",
			mcplib.Description("Run against all providers and require agreement"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleAnalyzeContract}
}

func (s *Server) getAnalysisTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_analysis",
		mcplib.WithDescription("Get the status and result of a contract analysis"),
		mcplib.WithString("analysis_id",
			mcplib.Required(),
			mcplib.Description("The analysis ID to check"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetAnalysis}
}

func (s *Server) draftDocumentTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("draft_document",
		mcplib.WithDescription("Start drafting a legal document for a matter. Returns the pending draft"),
		mcplib.WithString("matter_id",
			mcplib.Required(),
			mcplib.Description("The matter the document belongs to"),
		),
		mcplib.WithString("template",
			mcplib.Required(),
			mcplib.Description("Template: nda, engagement_letter, demand_letter, or settlement"),
		),
		mcplib.WithString("instructions",
			mcplib.Description("Additional drafting instructions"),
		),
		mcplib.WithObject("fields",
			mcplib.Description("Template variables, e.g. party names"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleDraftDocument}
}

func (s *Server) handleListMatters(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.deps.Matters == nil {
		return mcplib.NewToolResultError("matter reader not configured"), nil
	}
	clientID, _ := req.GetArguments()["client_id"].(string)

	matters, err := s.deps.Matters.List(ctx, clientID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list matters", err), nil
	}
	return marshalResult(matters)
}

func (s *Server) handleGetContract(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.deps.Contracts == nil {
		return mcplib.NewToolResultError("contract reader not configured"), nil
	}
	contractID, ok := req.GetArguments()["contract_id"].(string)
	if !ok || contractID == "" {
		return mcplib.NewToolResultError("contract_id is required"), nil
	}

	c, err := s.deps.Contracts.Get(ctx, contractID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get contract %s", contractID), err,
		), nil
	}
	return marshalResult(c)
}

func (s *Server) handleAnalyzeContract(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.deps.Analyses == nil {
		return mcplib.NewToolResultError("analysis runner not configured"), nil
	}
	args := req.GetArguments()
	contractID, ok := args["contract_id"].(string)
	if !ok || contractID == "" {
		return mcplib.NewToolResultError("contract_id is required"), nil
	}
	kind, ok := args["kind"].(string)
	if !ok || kind == "" {
		return mcplib.NewToolResultError("kind is required"), nil
	}
	provider, _ := args["provider"].(string)
	consensus, _ := args["consensus"].(bool)

	a, err := s.deps.Analyses.Request(ctx, contractID, analysis.CreateRequest{
		Kind:      analysis.Kind(kind),
		Provider:  provider,
		Consensus: consensus,
	}, requestedBy(ctx))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to request analysis", err), nil
	}
	return marshalResult(a)
}

func (s *Server) handleGetAnalysis(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.deps.Analyses == nil {
		return mcplib.NewToolResultError("analysis runner not configured"), nil
	}
	analysisID, ok := req.GetArguments()["analysis_id"].(string)
	if !ok || analysisID == "" {
		return mcplib.NewToolResultError("analysis_id is required"), nil
	}

	a, err := s.deps.Analyses.Get(ctx, analysisID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get analysis %s", analysisID), err,
		), nil
	}
	return marshalResult(a)
}

func (s *Server) handleDraftDocument(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.deps.Drafts == nil {
		return mcplib.NewToolResultError("draft runner not configured"), nil
	}
	args := req.GetArguments()
	matterID, ok := args["matter_id"].(string)
	if !ok || matterID == "" {
		return mcplib.NewToolResultError("matter_id is required"), nil
	}
	template, ok := args["template"].(string)
	if !ok || template == "" {
		return mcplib.NewToolResultError("template is required"), nil
	}
	instructions, _ := args["instructions"].(string)

	d, err := s.deps.Drafts.Request(ctx, matterID, analysis.CreateDraftRequest{
		Template:     analysis.TemplateKind(template),
		Instructions: instructions,
		Fields:       stringFields(args["fields"]),
	}, requestedBy(ctx))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to request draft", err), nil
	}
	return marshalResult(d)
}

// requestedBy attributes the request to the authenticated key owner.
func requestedBy(ctx context.Context) string {
	if u := middleware.UserFromContext(ctx); u != nil {
		return u.ID
	}
	return "mcp"
}

func stringFields(v any) map[string]string {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func marshalResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
