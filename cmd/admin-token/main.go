// Package main mints an administrator bearer token using the signing key
// from the environment.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lapelpin/lapelpin/internal/auth/admintoken"
	"github.com/lapelpin/lapelpin/internal/platform/config"
	"github.com/lapelpin/lapelpin/internal/platform/id"
)

func main() {
	subject := flag.String("subject", "", "administrator subject to embed in the token")
	flag.Parse()

	cfg, err := admintoken.LoadSignerConfigFromEnv(nil)
	if err != nil {
		config.Exitf("load admin token signer: %v", err)
	}

	jti, err := id.NewID()
	if err != nil {
		config.Exitf("generate token id: %v", err)
	}

	token, err := admintoken.Mint(cfg, *subject, jti)
	if err != nil {
		config.Exitf("mint admin token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
