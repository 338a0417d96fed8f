// Package httpapi exposes the badge registry over a JSON HTTP surface.
package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lapelpin/lapelpin/internal/auth/admintoken"
	apperrors "github.com/lapelpin/lapelpin/internal/platform/errors"
	"github.com/lapelpin/lapelpin/internal/registry/service"
)

// Handler serves the registry HTTP API.
type Handler struct {
	svc      *service.Service
	verifier admintoken.VerifierConfig
}

// NewHandler creates a handler backed by the registry service.
func NewHandler(svc *service.Service, verifier admintoken.VerifierConfig) *Handler {
	return &Handler{svc: svc, verifier: verifier}
}

// RegisterRoutes wires registry routes into the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil || h == nil {
		return
	}
	mux.HandleFunc("POST /v1/badges", h.handleIssue)
	mux.HandleFunc("GET /v1/badges", h.handleListBadges)
	mux.HandleFunc("GET /v1/badges/{id}", h.handleGetBadge)
	mux.HandleFunc("GET /v1/badges/{id}/metadata", h.handleBadgeMetadata)
	mux.HandleFunc("POST /v1/badges/{id}/transfer", h.handleTransfer)
	mux.HandleFunc("PUT /v1/badges/{id}/uri", h.handleSetBadgeURI)
	mux.HandleFunc("GET /v1/attendees/{address}/claimed", h.handleHasClaimed)
	mux.HandleFunc("GET /v1/registry", h.handleRegistryState)
	mux.HandleFunc("PUT /v1/registry/base-uri", h.handleSetBaseURI)
	mux.HandleFunc("GET /v1/events", h.handleListEvents)
	mux.HandleFunc("GET /healthz", handleHealthz)
}

type issueRequest struct {
	Attendee string `json:"attendee"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	badge, err := h.svc.Issue(r.Context(), req.Attendee)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, badgeResponse(badge))
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := badgeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	badge, err := h.svc.Transfer(r.Context(), id, req.From, req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, badgeResponse(badge))
}

func (h *Handler) handleGetBadge(w http.ResponseWriter, r *http.Request) {
	id, err := badgeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	badge, err := h.svc.GetBadge(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, badgeResponse(badge))
}

func (h *Handler) handleBadgeMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := badgeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	uri, err := h.svc.ResolveMetadata(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badge_id": id,
		"uri":      uri,
	})
}

func (h *Handler) handleListBadges(w http.ResponseWriter, r *http.Request) {
	pageSize := intQuery(r, "page_size", 50)
	page, err := h.svc.ListBadges(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	badges := make([]map[string]any, 0, len(page.Badges))
	for _, badge := range page.Badges {
		badges = append(badges, badgeResponse(badge))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badges":          badges,
		"next_page_token": page.NextPageToken,
	})
}

func (h *Handler) handleHasClaimed(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	claimed, err := h.svc.HasClaimed(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attendee": strings.TrimSpace(address),
		"claimed":  claimed,
	})
}

func (h *Handler) handleRegistryState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.RegistryState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_issued": state.TotalIssued,
		"base_uri":     state.BaseURI,
	})
}

type setBaseURIRequest struct {
	BaseURI string `json:"base_uri"`
}

func (h *Handler) handleSetBaseURI(w http.ResponseWriter, r *http.Request) {
	caller, err := h.adminCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req setBaseURIRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.SetBaseURI(r.Context(), caller, req.BaseURI); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base_uri": strings.TrimSpace(req.BaseURI),
	})
}

type setBadgeURIRequest struct {
	URI string `json:"uri"`
}

func (h *Handler) handleSetBadgeURI(w http.ResponseWriter, r *http.Request) {
	caller, err := h.adminCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := badgeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req setBadgeURIRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.SetBadgeURI(r.Context(), caller, id, req.URI); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badge_id": id,
		"uri":      strings.TrimSpace(req.URI),
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	afterSeq := uint64(0)
	if raw := r.URL.Query().Get("after_seq"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "after_seq must be a non-negative integer"))
			return
		}
		afterSeq = parsed
	}
	limit := intQuery(r, "limit", 100)
	events, err := h.svc.ListEvents(r.Context(), afterSeq, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(events))
	for _, evt := range events {
		entry := map[string]any{
			"seq":        evt.Seq,
			"kind":       string(evt.Kind),
			"badge_id":   evt.BadgeID,
			"created_at": evt.CreatedAt,
		}
		if evt.Attendee != "" {
			entry["attendee"] = evt.Attendee
		}
		if evt.Recipient != "" {
			entry["recipient"] = evt.Recipient
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// adminCaller authenticates the request's bearer token and returns the
// caller identity used for capability checks.
func (h *Handler) adminCaller(r *http.Request) (string, error) {
	if len(h.verifier.Key) == 0 {
		return "", apperrors.New(apperrors.CodeUnauthorized, "admin access is not configured")
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", apperrors.New(apperrors.CodeUnauthorized, "bearer token is required")
	}
	claims, err := admintoken.Verify(token, h.verifier)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
