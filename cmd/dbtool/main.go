package main

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/adapters/repositories"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/db"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ttl, err := time.ParseDuration(config.Get("CACHE_TTL", "168h"))
	if err != nil {
		log.Fatalf("invalid CACHE_TTL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := initAndPurge(ctx, db, ttl); err != nil {
		log.Fatal(err)
	}
}

func initAndPurge(ctx context.Context, db *sql.DB, ttl time.Duration) error {
	log.Println("Initializing leg cache schema...")
	if err := repositories.InitPostgresSchema(ctx, db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Purging cache entries older than %s...", ttl)
	n, err := repositories.PurgeExpired(ctx, db, time.Now().Add(-ttl).Unix(), true)
	if err != nil {
		log.Fatalf("purge failed: %v", err)
	}
	log.Printf("Purge complete: %d rows removed.", n)

	return nil
}
