// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidArgument represents a malformed or missing request value.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Attendee errors
	CodeAttendeeAddressEmpty Code = "ATTENDEE_ADDRESS_EMPTY"

	// Badge errors
	CodeBadgeAlreadyClaimed         Code = "BADGE_ALREADY_CLAIMED"
	CodeBadgeAlreadyHeld            Code = "BADGE_ALREADY_HELD"
	CodeBadgeTransferNotOwner       Code = "BADGE_TRANSFER_NOT_OWNER"
	CodeBadgeTransferRecipientEmpty Code = "BADGE_TRANSFER_RECIPIENT_EMPTY"

	// Registry errors
	CodeRegistryBaseURIEmpty Code = "REGISTRY_BASE_URI_EMPTY"

	// Access errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps the error code to an HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeAttendeeAddressEmpty,
		CodeBadgeTransferRecipientEmpty, CodeRegistryBaseURIEmpty:
		return http.StatusBadRequest
	case CodeBadgeAlreadyClaimed, CodeBadgeAlreadyHeld:
		return http.StatusConflict
	case CodeBadgeTransferNotOwner, CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
