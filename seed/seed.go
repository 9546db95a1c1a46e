// Package seed loads demo linked accounts into the database for local
// development of the dashboard. Seed data lives in embedded SQL files and is
// versioned separately from schema migrations.
package seed

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed sql/*.sql
var seedFS embed.FS

// Options defines how to run seed migrations.
type Options struct {
	Driver  string // sqlite or postgres
	DSN     string
	Command string // up, down, status, reset
	Logger  *log.Logger
}

// Run applies the embedded seed files. A missing Driver or DSN makes it a
// no-op so production deployments never seed by accident.
func Run(opts Options) error {
	if strings.TrimSpace(opts.Driver) == "" || strings.TrimSpace(opts.DSN) == "" {
		return nil
	}

	if opts.Logger != nil {
		goose.SetLogger(opts.Logger)
	}
	goose.SetBaseFS(seedFS)
	// Separate table so seed state never collides with schema migrations.
	goose.SetTableName("seed_migrations")

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	switch strings.ToLower(strings.TrimSpace(opts.Command)) {
	case "", "up":
		return goose.Up(db, "sql")
	case "down":
		return goose.Down(db, "sql")
	case "status":
		return goose.Status(db, "sql")
	case "reset":
		return goose.Reset(db, "sql")
	default:
		return fmt.Errorf("unknown seed command: %s", opts.Command)
	}
}

// RunFromEnv runs the seed when SEED_ON_START is truthy.
//
// Env vars:
// - SEED_ON_START: 1/true enables seeding
// - SEED_DRIVER: sqlite or postgres (falls back to MIGRATE_DRIVER)
// - SEED_DSN: connection string (falls back to MIGRATE_DSN)
// - SEED_CMD: up, down, status, reset (default: up)
func RunFromEnv() error {
	if !isTruthy(os.Getenv("SEED_ON_START")) {
		return nil
	}

	driver := strings.TrimSpace(os.Getenv("SEED_DRIVER"))
	if driver == "" {
		driver = strings.TrimSpace(os.Getenv("MIGRATE_DRIVER"))
	}
	dsn := strings.TrimSpace(os.Getenv("SEED_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("MIGRATE_DSN"))
	}

	return Run(Options{
		Driver:  driver,
		DSN:     dsn,
		Command: strings.TrimSpace(os.Getenv("SEED_CMD")),
		Logger:  log.New(os.Stdout, "[seed] ", log.LstdFlags),
	})
}

func isTruthy(v string) bool {
	s := strings.TrimSpace(strings.ToLower(v))
	return s == "1" || s == "true" || s == "yes" || s == "y"
}
