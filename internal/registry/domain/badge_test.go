package domain

import (
	"errors"
	"testing"
)

func TestResolveURIPrefersOverride(t *testing.T) {
	badge := Badge{ID: 3, URIOverride: "ipfs://custom/3.json"}
	if got := ResolveURI("https://badges.example.com/", badge); got != "ipfs://custom/3.json" {
		t.Fatalf("resolve uri = %q, want override", got)
	}
}

func TestResolveURIFallsBackToBasePlusID(t *testing.T) {
	badge := Badge{ID: 7}
	got := ResolveURI("https://badges.example.com/", badge)
	want := "https://badges.example.com/7"
	if got != want {
		t.Fatalf("resolve uri = %q, want %q", got, want)
	}
}

func TestResolveURIIgnoresBlankOverride(t *testing.T) {
	badge := Badge{ID: 1, URIOverride: "   "}
	got := ResolveURI("https://badges.example.com/", badge)
	want := "https://badges.example.com/1"
	if got != want {
		t.Fatalf("resolve uri = %q, want %q", got, want)
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  0xabc123  ")
	if err != nil {
		t.Fatalf("normalize address: %v", err)
	}
	if got != "0xabc123" {
		t.Fatalf("address = %q, want %q", got, "0xabc123")
	}

	if _, err := NormalizeAddress("   "); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestNormalizeBaseURI(t *testing.T) {
	got, err := NormalizeBaseURI(" https://badges.example.com/ ")
	if err != nil {
		t.Fatalf("normalize base uri: %v", err)
	}
	if got != "https://badges.example.com/" {
		t.Fatalf("base uri = %q", got)
	}

	if _, err := NormalizeBaseURI(""); !errors.Is(err, ErrEmptyBaseURI) {
		t.Fatalf("expected ErrEmptyBaseURI, got %v", err)
	}
}

func TestAttendeeHasClaimed(t *testing.T) {
	if (Attendee{}).HasClaimed() {
		t.Fatal("zero-value attendee must not report claimed")
	}
	if !(Attendee{Status: ClaimStatusClaimed}).HasClaimed() {
		t.Fatal("claimed attendee must report claimed")
	}
}
