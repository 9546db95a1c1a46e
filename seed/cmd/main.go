// Standalone seed runner for demo data. SEED_ON_START must be set; see
// seed.RunFromEnv for the full set of env vars.
package main

import (
	"log"

	"github.com/reputrace/social-link/seed"
)

func main() {
	if err := seed.RunFromEnv(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Println("seed completed")
}
