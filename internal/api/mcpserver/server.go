// Package mcpserver exposes the badge registry to MCP clients as
// tools and resources backed by the in-process registry service.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lapelpin/lapelpin/internal/platform/branding"
	"github.com/lapelpin/lapelpin/internal/registry/service"
)

const (
	serverName    = "lapelpin-registry"
	serverVersion = "0.1.0"
)

// Server hosts the MCP surface for the badge registry.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server with registry tools and resources registered.
func New(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("registry service is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Title:   branding.AppName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(mcpServer, BadgeIssueTool(), BadgeIssueHandler(svc))
	mcp.AddTool(mcpServer, BadgeTransferTool(), BadgeTransferHandler(svc))
	mcp.AddTool(mcpServer, BadgeMetadataTool(), BadgeMetadataHandler(svc))
	mcp.AddTool(mcpServer, AttendeeClaimedTool(), AttendeeClaimedHandler(svc))

	mcpServer.AddResource(RegistryStatsResource(), RegistryStatsResourceHandler(svc))
	mcpServer.AddResource(BadgeListResource(), BadgeListResourceHandler(svc))

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
