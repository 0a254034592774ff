package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"staking_bot/internal/db"
)

// Applies every file under internal/migrations in name order. The
// statements are idempotent, so re-running is safe.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	dir := "internal/migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read migrations dir: %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("read %s: %v", name, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			log.Fatalf("apply %s: %v", name, err)
		}
		log.Printf("applied %s\n", name)
	}
	log.Println("migrations complete")
}
