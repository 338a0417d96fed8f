package httpapi

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lapelpin/lapelpin/internal/auth/admintoken"
	"github.com/lapelpin/lapelpin/internal/registry/service"
	"github.com/lapelpin/lapelpin/internal/registry/storage/sqlite"
)

type testEnv struct {
	server     *httptest.Server
	adminToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := admintoken.SignerConfig{
		Issuer:   "lapelpin",
		Audience: "registry",
		Key:      priv,
		TTL:      time.Hour,
	}
	token, err := admintoken.Mint(signer, "organizer-1", "jti-1")
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	verifier := admintoken.VerifierConfig{
		Issuer:   "lapelpin",
		Audience: "registry",
		Key:      pub,
	}

	svc := service.NewService(store, "organizer-1", nil)
	mux := http.NewServeMux()
	NewHandler(svc, verifier).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{server: server, adminToken: token}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func (e *testEnv) adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + e.adminToken}
}

func TestIssueAndClaimLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if id, ok := body["id"].(float64); !ok || id != 0 {
		t.Fatalf("badge id = %v, want 0", body["id"])
	}

	resp, body = env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != "BADGE_ALREADY_CLAIMED" {
		t.Fatalf("code = %v, want BADGE_ALREADY_CLAIMED", body["code"])
	}

	resp, body = env.do(t, http.MethodGet, "/v1/attendees/alice/claimed", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if claimed, ok := body["claimed"].(bool); !ok || !claimed {
		t.Fatalf("claimed = %v, want true", body["claimed"])
	}
}

func TestTransferKeepsClaimFlag(t *testing.T) {
	env := newTestEnv(t)

	if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"a"}`, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue status = %d, want 201", resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodPost, "/v1/badges/0/transfer", `{"from":"a","to":"b"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer status = %d, want 200", resp.StatusCode)
	}
	if body["owner"] != "b" {
		t.Fatalf("owner = %v, want b", body["owner"])
	}

	// a stays claimed after the transfer.
	resp, body = env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"a"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reissue status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != "BADGE_ALREADY_CLAIMED" {
		t.Fatalf("code = %v", body["code"])
	}

	// b claims independently of the badge it now holds.
	resp, body = env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"b"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue for b status = %d, want 201", resp.StatusCode)
	}
	if id, ok := body["id"].(float64); !ok || id != 1 {
		t.Fatalf("badge id = %v, want 1", body["id"])
	}

	resp, body = env.do(t, http.MethodGet, "/v1/registry", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("registry status = %d, want 200", resp.StatusCode)
	}
	if total, ok := body["total_issued"].(float64); !ok || total != 2 {
		t.Fatalf("total_issued = %v, want 2", body["total_issued"])
	}
}

func TestTransferRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil); resp.StatusCode != http.StatusCreated {
		t.Fatal("seed issue failed")
	}

	resp, body := env.do(t, http.MethodPost, "/v1/badges/0/transfer", `{"from":"mallory","to":"bob"}`, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if body["code"] != "BADGE_TRANSFER_NOT_OWNER" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestMetadataResolution(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPut, "/v1/registry/base-uri", `{"base_uri":"https://badges.example.com/"}`, env.adminHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set base uri status = %d, want 200", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil); resp.StatusCode != http.StatusCreated {
		t.Fatal("seed issue failed")
	}

	resp, body := env.do(t, http.MethodGet, "/v1/badges/0/metadata", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metadata status = %d, want 200", resp.StatusCode)
	}
	if body["uri"] != "https://badges.example.com/0" {
		t.Fatalf("uri = %v", body["uri"])
	}

	resp, _ = env.do(t, http.MethodPut, "/v1/badges/0/uri", `{"uri":"ipfs://custom/0.json"}`, env.adminHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set badge uri status = %d, want 200", resp.StatusCode)
	}
	resp, body = env.do(t, http.MethodGet, "/v1/badges/0/metadata", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metadata status = %d, want 200", resp.StatusCode)
	}
	if body["uri"] != "ipfs://custom/0.json" {
		t.Fatalf("uri = %v, want override", body["uri"])
	}

	resp, body = env.do(t, http.MethodGet, "/v1/badges/99/metadata", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/v1/registry/base-uri", `{"base_uri":"https://x/"}`, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if body["code"] != "UNAUTHORIZED" {
		t.Fatalf("code = %v", body["code"])
	}

	headers := map[string]string{"Authorization": "Bearer not-a-token"}
	resp, _ = env.do(t, http.MethodPut, "/v1/registry/base-uri", `{"base_uri":"https://x/"}`, headers)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestErrorMessagesAreLocalized(t *testing.T) {
	env := newTestEnv(t)
	if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil); resp.StatusCode != http.StatusCreated {
		t.Fatal("seed issue failed")
	}

	headers := map[string]string{"Accept-Language": "pt-BR"}
	resp, body := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, headers)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if body["message"] != "Este participante já resgatou um crachá." {
		t.Fatalf("message = %v, want pt-BR translation", body["message"])
	}
}

func TestBadgeIDValidation(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/v1/badges/not-a-number/metadata", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestListBadgesPagination(t *testing.T) {
	env := newTestEnv(t)
	for _, attendee := range []string{"a", "b", "c"} {
		if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"`+attendee+`"}`, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("issue for %s failed", attendee)
		}
	}

	resp, body := env.do(t, http.MethodGet, "/v1/badges?page_size=2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	badges, ok := body["badges"].([]any)
	if !ok || len(badges) != 2 {
		t.Fatalf("badges = %v, want 2 entries", body["badges"])
	}
	token, _ := body["next_page_token"].(string)
	if token == "" {
		t.Fatal("expected next page token")
	}

	resp, body = env.do(t, http.MethodGet, "/v1/badges?page_size=2&page_token="+token, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	badges, ok = body["badges"].([]any)
	if !ok || len(badges) != 1 {
		t.Fatalf("badges = %v, want 1 entry", body["badges"])
	}
}

func TestEventHistory(t *testing.T) {
	env := newTestEnv(t)
	if resp, _ := env.do(t, http.MethodPost, "/v1/badges", `{"attendee":"alice"}`, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue failed: %d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/v1/badges/0/transfer", `{"from":"alice","to":"bob"}`, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer failed: %d", resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/v1/events", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	events, ok := body["events"].([]any)
	if !ok || len(events) != 2 {
		t.Fatalf("events = %v, want 2 entries", body["events"])
	}
	first := events[0].(map[string]any)
	if first["kind"] != "badge.issued" || first["attendee"] != "alice" {
		t.Fatalf("first event = %v", first)
	}
	second := events[1].(map[string]any)
	if second["kind"] != "badge.transferred" || second["recipient"] != "bob" {
		t.Fatalf("second event = %v", second)
	}

	firstSeq := uint64(first["seq"].(float64))
	resp, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/events?after_seq=%d", firstSeq), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	events, ok = body["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("events after seq %d = %v, want 1 entry", firstSeq, body["events"])
	}
	if events[0].(map[string]any)["kind"] != "badge.transferred" {
		t.Fatalf("remaining event = %v", events[0])
	}

	resp, body = env.do(t, http.MethodGet, "/v1/events?after_seq=nope", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.server.Client().Get(env.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
