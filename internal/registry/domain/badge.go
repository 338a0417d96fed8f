package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyAddress indicates a missing attendee address.
	ErrEmptyAddress = errors.New("attendee address is required")
	// ErrEmptyRecipient indicates a missing transfer recipient.
	ErrEmptyRecipient = errors.New("transfer recipient is required")
	// ErrEmptyBaseURI indicates a missing registry base URI.
	ErrEmptyBaseURI = errors.New("base uri is required")
)

// Badge is a uniquely identified attendance credential bound to an owner.
// IDs are assigned sequentially from zero and are never reused.
type Badge struct {
	ID          uint64
	Owner       string
	URIOverride string
	IssuedTo    string
	IssuedAt    time.Time
}

// ResolveURI returns the metadata pointer for a badge: the per-badge
// override when set, otherwise the registry base URI concatenated with the
// badge id.
func ResolveURI(baseURI string, badge Badge) string {
	if override := strings.TrimSpace(badge.URIOverride); override != "" {
		return override
	}
	return baseURI + strconv.FormatUint(badge.ID, 10)
}

// NormalizeAddress validates and canonicalizes an attendee address.
// Addresses are opaque identities; only surrounding whitespace is stripped.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrEmptyAddress
	}
	return address, nil
}

// NormalizeBaseURI validates a registry base URI.
func NormalizeBaseURI(baseURI string) (string, error) {
	baseURI = strings.TrimSpace(baseURI)
	if baseURI == "" {
		return "", ErrEmptyBaseURI
	}
	return baseURI, nil
}
