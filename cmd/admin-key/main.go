// Package main provides a one-shot utility for admin token key generation.
//
// It emits the asymmetric keypair used to sign and verify administrator
// bearer tokens.
package main

import (
	"os"

	"github.com/lapelpin/lapelpin/internal/platform/config"
	"github.com/lapelpin/lapelpin/internal/tools/adminkey"
)

func main() {
	if err := adminkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate admin token key: %v", err)
	}
}
