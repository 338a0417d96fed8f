package domain

import "time"

// ClaimStatus describes where an attendee sits in the claim lifecycle.
type ClaimStatus int

const (
	// ClaimStatusNotClaimed means the attendee has never been issued a badge.
	ClaimStatusNotClaimed ClaimStatus = iota
	// ClaimStatusClaimed means the attendee was issued a badge. The status is
	// terminal: transferring the badge away does not clear it.
	ClaimStatusClaimed
)

// Attendee is an address-like identity eligible for at most one badge.
type Attendee struct {
	Address   string
	Status    ClaimStatus
	ClaimedAt time.Time
}

// HasClaimed reports whether the attendee has ever been issued a badge.
func (a Attendee) HasClaimed() bool {
	return a.Status == ClaimStatusClaimed
}
