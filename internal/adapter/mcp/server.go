// Package mcp exposes Praxis operations to AI agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/service"
)

// MatterReader lists and reads matters for MCP tools.
type MatterReader interface {
	List(ctx context.Context, clientID string) ([]matter.Matter, error)
	Get(ctx context.Context, id string) (*matter.Matter, error)
}

// ContractReader reads contracts for MCP tools.
type ContractReader interface {
	Get(ctx context.Context, id string) (*contract.Contract, error)
}

// AnalysisRunner requests and reads contract analyses.
type AnalysisRunner interface {
	Request(ctx context.Context, contractID string, req analysis.CreateRequest, requestedBy string) (*analysis.Analysis, error)
	Get(ctx context.Context, id string) (*analysis.Analysis, error)
}

// DraftRunner requests and reads document drafts.
type DraftRunner interface {
	Request(ctx context.Context, matterID string, req analysis.CreateDraftRequest, requestedBy string) (*analysis.Draft, error)
	Get(ctx context.Context, id string) (*analysis.Draft, error)
}

// ProviderLister reports the configured LLM providers.
type ProviderLister interface {
	Providers() []service.ProviderInfo
}

// ServerConfig holds MCP server configuration.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
}

// ServerDeps holds the service dependencies for MCP tools. A nil Validate
// disables authentication.
type ServerDeps struct {
	Matters   MatterReader
	Contracts ContractReader
	Analyses  AnalysisRunner
	Drafts    DraftRunner
	Providers ProviderLister
	Validate  KeyValidator
}

// Server exposes Praxis tools and resources over streamable HTTP MCP.
type Server struct {
	cfg        ServerConfig
	deps       ServerDeps
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// NewServer creates an MCP server with all tools and resources registered.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(true, true),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying MCP server, for tests and embedding.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Start listens on the configured address and serves MCP over streamable
// HTTP. It returns once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	handler := AuthMiddleware(s.deps.Validate, mcpserver.NewStreamableHTTPServer(s.mcpServer))
	s.httpServer = &http.Server{Handler: handler}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server error", "error", err)
		}
	}()

	slog.Info("mcp server listening", "addr", ln.Addr().String())
	return nil
}

// Stop gracefully shuts down the MCP HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
