package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lapelpin/lapelpin/internal/registry/service"
)

const (
	registryStatsResourceURI = "registry://stats"
	badgeListResourceURI     = "badges://list"
)

// RegistryStatsPayload is the registry://stats resource payload.
type RegistryStatsPayload struct {
	TotalIssued uint64 `json:"total_issued"`
	BaseURI     string `json:"base_uri"`
}

// RegistryStatsResource describes the registry stats resource.
func RegistryStatsResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         registryStatsResourceURI,
		Name:        "registry-stats",
		Description: "Registry issuance counter and metadata base pointer",
		MIMEType:    "application/json",
	}
}

// RegistryStatsResourceHandler reads the registry counters.
func RegistryStatsResourceHandler(svc *service.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		state, err := svc.RegistryState(ctx)
		if err != nil {
			return nil, fmt.Errorf("registry stats failed: %w", err)
		}
		payload := RegistryStatsPayload{
			TotalIssued: state.TotalIssued,
			BaseURI:     state.BaseURI,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal registry stats: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      registryStatsResourceURI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}
}

// BadgeListPayload is the badges://list resource payload.
type BadgeListPayload struct {
	Badges []BadgeListEntry `json:"badges"`
}

// BadgeListEntry is one badge in the badge list resource.
type BadgeListEntry struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	IssuedTo string `json:"issued_to"`
	IssuedAt string `json:"issued_at"`
}

// BadgeListResource describes the badge list resource.
func BadgeListResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         badgeListResourceURI,
		Name:        "badge-list",
		Description: "Issued badges in identifier order",
		MIMEType:    "application/json",
	}
}

// BadgeListResourceHandler reads the first page of issued badges.
func BadgeListResourceHandler(svc *service.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		page, err := svc.ListBadges(ctx, 100, "")
		if err != nil {
			return nil, fmt.Errorf("badge list failed: %w", err)
		}
		payload := BadgeListPayload{}
		for _, badge := range page.Badges {
			payload.Badges = append(payload.Badges, BadgeListEntry{
				ID:       badge.ID,
				Owner:    badge.Owner,
				IssuedTo: badge.IssuedTo,
				IssuedAt: badge.IssuedAt.UTC().Format(time.RFC3339),
			})
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal badge list: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      badgeListResourceURI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}
}
