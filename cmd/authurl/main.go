// Command authurl prints the consent URL for each configured platform.
// Useful for walking the link flow by hand against real providers.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/reputrace/social-link/platforms"
	"github.com/reputrace/social-link/server"
)

var uservar string

func init() {
	flag.StringVar(&uservar, "user", "dev-user", "user id to embed in the state")
}

func main() {
	flag.Parse()

	cfg := server.LoadConfig()
	registry := platforms.NewRegistry(cfg.BaseURL, cfg.PlatformCredentials())
	builder := &platforms.AuthorizeURLBuilder{
		Registry: registry,
		States: &platforms.StateCodec{
			SigningKey: []byte(cfg.StateSigningKey),
		},
	}

	failed := false
	for _, id := range registry.IDs() {
		u, err := builder.BuildAuthorizeURL(id, uservar)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-10s error: %v\n", id, err)
			failed = true
			continue
		}
		fmt.Printf("%-10s %s\n", id, u)
	}
	if failed {
		os.Exit(1)
	}
}
