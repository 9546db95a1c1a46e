// Standalone migration runner. Configure via the MIGRATE_* env vars
// documented on migrate.RunFromEnv; MIGRATE_ON_START must be set.
package main

import (
	"log"

	"github.com/reputrace/social-link/migrate"
)

func main() {
	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	log.Println("migrate completed")
}
