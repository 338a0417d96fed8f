package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/lapelpin/lapelpin/internal/platform/errors"
	"github.com/lapelpin/lapelpin/internal/platform/errors/i18n"
	"github.com/lapelpin/lapelpin/internal/registry/domain"
)

const maxRequestBody = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer func() { _, _ = io.Copy(io.Discard, body) }()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError renders an application error as JSON, localizing the
// message from the request's Accept-Language header.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    string(apperrors.CodeUnknown),
			Message: "internal error",
		})
		return
	}
	catalog := i18n.MatchAcceptLanguage(r.Header.Get("Accept-Language"))
	message := catalog.Format(string(appErr.Code), appErr.Metadata)
	if message == string(appErr.Code) {
		message = appErr.Message
	}
	writeJSON(w, appErr.HTTPStatus(), errorResponse{
		Code:    string(appErr.Code),
		Message: message,
	})
}

func badgeResponse(badge domain.Badge) map[string]any {
	out := map[string]any{
		"id":        badge.ID,
		"owner":     badge.Owner,
		"issued_to": badge.IssuedTo,
		"issued_at": badge.IssuedAt.UTC().Format(time.RFC3339Nano),
	}
	if badge.URIOverride != "" {
		out["uri_override"] = badge.URIOverride
	}
	return out
}

func badgeID(r *http.Request) (uint64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.WithMetadata(
			apperrors.CodeInvalidArgument,
			"badge id must be a non-negative integer",
			map[string]string{"badge_id": raw},
		)
	}
	return id, nil
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
