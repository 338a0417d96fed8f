package i18n

// messagesEnUS holds the base (en-US) user-facing message templates.
var messagesEnUS = map[Code]string{
	"UNKNOWN":                        "Something went wrong. Please try again.",
	"INVALID_ARGUMENT":               "The request is malformed.",
	"ATTENDEE_ADDRESS_EMPTY":         "An attendee address is required.",
	"BADGE_ALREADY_CLAIMED":          "This attendee has already claimed a badge.",
	"BADGE_ALREADY_HELD":             "This attendee already holds a badge.",
	"BADGE_TRANSFER_NOT_OWNER":       "Only the current badge holder may transfer badge {{.badge_id}}.",
	"BADGE_TRANSFER_RECIPIENT_EMPTY": "A transfer recipient is required.",
	"REGISTRY_BASE_URI_EMPTY":        "A base URI is required.",
	"UNAUTHORIZED":                   "You are not allowed to perform this action.",
	"NOT_FOUND":                      "Badge {{.badge_id}} was never issued.",
}
