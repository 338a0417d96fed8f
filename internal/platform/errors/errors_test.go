package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeBadgeAlreadyClaimed, "attendee already claimed a badge")
	target := New(CodeBadgeAlreadyClaimed, "different message")

	if !errors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(err, New(CodeNotFound, "badge not found")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "issue badge", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	testCases := []struct {
		code Code
		want int
	}{
		{CodeBadgeAlreadyClaimed, http.StatusConflict},
		{CodeBadgeAlreadyHeld, http.StatusConflict},
		{CodeUnauthorized, http.StatusForbidden},
		{CodeBadgeTransferNotOwner, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAttendeeAddressEmpty, http.StatusBadRequest},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWithMetadataCarriesTemplateContext(t *testing.T) {
	err := WithMetadata(CodeBadgeTransferNotOwner, "transfer denied", map[string]string{
		"badge_id": "7",
	})
	if err.Metadata["badge_id"] != "7" {
		t.Fatalf("metadata badge_id = %q, want %q", err.Metadata["badge_id"], "7")
	}
}
