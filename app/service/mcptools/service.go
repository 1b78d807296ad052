package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"snapsight/app/config"
	"snapsight/app/service/analyzer"
	"snapsight/app/service/history"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const shutdownTimeout = 5 * time.Second

// Service exposes the analysis archive to MCP clients as read-only
// tools, served over SSE. Disabled unless an address is configured.
type Service struct {
	cfg         *config.Config
	analyzerSvc *analyzer.Service
	historySvc  *history.Service

	mcpServer *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:         do.MustInvoke[*config.Config](di),
		analyzerSvc: do.MustInvoke[*analyzer.Service](di),
		historySvc:  do.MustInvoke[*history.Service](di),
	}

	mcpServer := server.NewMCPServer("snapsight", "1.0.0",
		server.WithToolCapabilities(false),
	)

	mcpServer.AddTool(
		mcp.NewTool("get_status",
			mcp.WithDescription("Report whether a screenshot analysis is currently running and the state of the completion badge"),
		),
		s.handleGetStatus,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_responses",
			mcp.WithDescription("List archived screenshot analyses, most recent first"),
		),
		s.handleListResponses,
	)

	s.mcpServer = mcpServer

	return s, nil
}

func (s *Service) Run(ctx context.Context) error {
	if s.cfg.MCP.Listen == "" {
		<-ctx.Done()
		return nil
	}

	sse := server.NewSSEServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(s.cfg.MCP.Listen)
	}()

	slog.Info("MCP server started", "listen", s.cfg.MCP.Listen)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	}
}

func (s *Service) handleGetStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(map[string]any{
		"isProcessing": s.analyzerSvc.Processing(),
		"badge":        s.analyzerSvc.Badge(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) handleListResponses(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.historySvc.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list responses: %v", err)), nil
	}

	// Screenshots are large base64 blobs, strip them from tool output.
	for i := range records {
		records[i].Screenshot = ""
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responses: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}
