package main

import (
	"flag"
	"log"

	"github.com/reputrace/social-link/migrate"
	"github.com/reputrace/social-link/seed"
	"github.com/reputrace/social-link/server"
)

var addrvar string

func init() {
	flag.StringVar(&addrvar, "addr", ":8080", "listen address")
}

func main() {
	flag.Parse()

	// Optionally run DB migrations before the server starts.
	// Configure via environment variables (see migrate.RunFromEnv docs):
	// MIGRATE_ON_START=1 MIGRATE_DRIVER=postgres MIGRATE_DSN=...
	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Demo data for local dashboard work, gated by SEED_ON_START.
	if err := seed.RunFromEnv(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	cfg := server.LoadConfig()
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}

	engine := server.NewGinEngine(srv)
	log.Printf("[server] social-link listening on %s (env=%s)", addrvar, cfg.Env)
	if err := engine.Run(addrvar); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
