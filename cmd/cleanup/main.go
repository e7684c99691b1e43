package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"chatrelay/internal/config"
	"chatrelay/internal/repository/postgres"
	"chatrelay/internal/service/session"
)

func main() {
	// Parse command-line flags
	purgePlaceholders := flag.Bool("purge-placeholders", false, "Delete the placeholder session buckets (default_user, test)")
	backfillTimestamps := flag.Bool("backfill-timestamps", false, "Set created_at on rows where it is missing")
	flag.Parse()

	if !*purgePlaceholders && !*backfillTimestamps {
		log.Fatal("nothing to do: pass -purge-placeholders and/or -backfill-timestamps")
	}

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	messageRepo := postgres.NewMessageRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	})
	admin := session.NewAdminService(messageRepo, cfg.DeleteConfirmToken, cfg.PlaceholderIDs, logger)

	if *purgePlaceholders {
		deleted, err := admin.PurgePlaceholders(ctx)
		if err != nil {
			log.Fatalf("Failed to purge placeholder sessions: %v", err)
		}
		log.Printf("Purged placeholder sessions: %d messages deleted", deleted)
	}

	if *backfillTimestamps {
		fixed, err := admin.BackfillTimestamps(ctx)
		if err != nil {
			log.Fatalf("Failed to backfill timestamps: %v", err)
		}
		log.Printf("Backfilled timestamps on %d messages", fixed)
	}
}
