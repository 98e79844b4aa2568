package main

import (
	"fmt"
	"os"

	"groovetree/backend/internal/config"
	"groovetree/backend/internal/database"
)

// dbcheck verifies connectivity and that the schema tables exist. Useful
// before first deploy and in container health checks.
func main() {
	cfg := config.Load()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("ERROR: failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	tables := []string{
		"users", "pages", "links", "events", "photos",
		"favorite_artists", "page_views", "share_events",
	}
	missing := 0
	for _, table := range tables {
		var exists bool
		err := db.Get(&exists,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table)
		if err != nil {
			fmt.Printf("ERROR: checking table %s: %v\n", table, err)
			os.Exit(1)
		}
		if !exists {
			fmt.Printf("MISSING: table %s\n", table)
			missing++
		}
	}

	if missing > 0 {
		fmt.Printf("%d of %d tables missing, run the server once to apply migrations\n",
			missing, len(tables))
		os.Exit(1)
	}
	fmt.Println("OK: database reachable, schema present")
}
