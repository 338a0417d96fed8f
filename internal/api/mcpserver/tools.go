package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lapelpin/lapelpin/internal/registry/domain"
	"github.com/lapelpin/lapelpin/internal/registry/service"
)

// BadgeIssueInput is the badge_issue tool input.
type BadgeIssueInput struct {
	Attendee string `json:"attendee" jsonschema:"attendee address claiming a badge"`
}

// BadgeResult describes a badge returned by registry tools.
type BadgeResult struct {
	ID       uint64 `json:"id" jsonschema:"badge identifier"`
	Owner    string `json:"owner" jsonschema:"current badge holder"`
	IssuedTo string `json:"issued_to" jsonschema:"original claimant"`
	IssuedAt string `json:"issued_at" jsonschema:"issuance timestamp (RFC 3339)"`
}

// BadgeIssueTool describes the badge_issue tool.
func BadgeIssueTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "badge_issue",
		Description: "Issues a one-time attendance badge to an attendee",
	}
}

// BadgeIssueHandler executes a badge issuance request.
func BadgeIssueHandler(svc *service.Service) mcp.ToolHandlerFor[BadgeIssueInput, BadgeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BadgeIssueInput) (*mcp.CallToolResult, BadgeResult, error) {
		badge, err := svc.Issue(ctx, input.Attendee)
		if err != nil {
			return nil, BadgeResult{}, fmt.Errorf("badge issue failed: %w", err)
		}
		return nil, badgeResult(badge), nil
	}
}

// BadgeTransferInput is the badge_transfer tool input.
type BadgeTransferInput struct {
	BadgeID uint64 `json:"badge_id" jsonschema:"badge identifier"`
	From    string `json:"from" jsonschema:"current badge holder"`
	To      string `json:"to" jsonschema:"transfer recipient"`
}

// BadgeTransferTool describes the badge_transfer tool.
func BadgeTransferTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "badge_transfer",
		Description: "Transfers a badge to a new holder without touching claim flags",
	}
}

// BadgeTransferHandler executes a badge transfer request.
func BadgeTransferHandler(svc *service.Service) mcp.ToolHandlerFor[BadgeTransferInput, BadgeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BadgeTransferInput) (*mcp.CallToolResult, BadgeResult, error) {
		badge, err := svc.Transfer(ctx, input.BadgeID, input.From, input.To)
		if err != nil {
			return nil, BadgeResult{}, fmt.Errorf("badge transfer failed: %w", err)
		}
		return nil, badgeResult(badge), nil
	}
}

// BadgeMetadataInput is the badge_metadata tool input.
type BadgeMetadataInput struct {
	BadgeID uint64 `json:"badge_id" jsonschema:"badge identifier"`
}

// BadgeMetadataResult is the resolved metadata pointer for a badge.
type BadgeMetadataResult struct {
	BadgeID uint64 `json:"badge_id" jsonschema:"badge identifier"`
	URI     string `json:"uri" jsonschema:"resolved metadata URI"`
}

// BadgeMetadataTool describes the badge_metadata tool.
func BadgeMetadataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "badge_metadata",
		Description: "Resolves the metadata URI for an issued badge",
	}
}

// BadgeMetadataHandler resolves a badge's metadata pointer.
func BadgeMetadataHandler(svc *service.Service) mcp.ToolHandlerFor[BadgeMetadataInput, BadgeMetadataResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BadgeMetadataInput) (*mcp.CallToolResult, BadgeMetadataResult, error) {
		uri, err := svc.ResolveMetadata(ctx, input.BadgeID)
		if err != nil {
			return nil, BadgeMetadataResult{}, fmt.Errorf("badge metadata failed: %w", err)
		}
		return nil, BadgeMetadataResult{BadgeID: input.BadgeID, URI: uri}, nil
	}
}

// AttendeeClaimedInput is the attendee_claimed tool input.
type AttendeeClaimedInput struct {
	Attendee string `json:"attendee" jsonschema:"attendee address to check"`
}

// AttendeeClaimedResult reports an attendee's claim flag.
type AttendeeClaimedResult struct {
	Attendee string `json:"attendee" jsonschema:"attendee address"`
	Claimed  bool   `json:"claimed" jsonschema:"whether the attendee has ever claimed a badge"`
}

// AttendeeClaimedTool describes the attendee_claimed tool.
func AttendeeClaimedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attendee_claimed",
		Description: "Reports whether an attendee has already claimed a badge",
	}
}

// AttendeeClaimedHandler checks an attendee's claim flag.
func AttendeeClaimedHandler(svc *service.Service) mcp.ToolHandlerFor[AttendeeClaimedInput, AttendeeClaimedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AttendeeClaimedInput) (*mcp.CallToolResult, AttendeeClaimedResult, error) {
		claimed, err := svc.HasClaimed(ctx, input.Attendee)
		if err != nil {
			return nil, AttendeeClaimedResult{}, fmt.Errorf("attendee claimed check failed: %w", err)
		}
		return nil, AttendeeClaimedResult{Attendee: input.Attendee, Claimed: claimed}, nil
	}
}

func badgeResult(badge domain.Badge) BadgeResult {
	return BadgeResult{
		ID:       badge.ID,
		Owner:    badge.Owner,
		IssuedTo: badge.IssuedTo,
		IssuedAt: badge.IssuedAt.UTC().Format(time.RFC3339),
	}
}
