// Package auth groups authentication helpers for the registry.
//
// The admintoken subpackage verifies and mints the ed25519-signed
// bearer tokens that identify registry administrators.
package auth
