package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chatrelay/internal/capabilities"
	"chatrelay/internal/config"
	"chatrelay/internal/domain/repositories"
	"chatrelay/internal/handler"
	"chatrelay/internal/llm"
	"chatrelay/internal/middleware"
	"chatrelay/internal/repository/memory"
	"chatrelay/internal/repository/postgres"
	"chatrelay/internal/service/chat"
	"chatrelay/internal/service/session"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.Provider,
	)

	// Create message store: Postgres when configured, in-memory otherwise.
	// The in-memory store keeps local development working without a database
	// but loses everything on restart.
	ctx := context.Background()
	var messageRepo repositories.MessageRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		logger.Info("database connected",
			"max_conns", 25,
			"min_conns", 5,
		)

		messageRepo = postgres.NewMessageRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Logger: logger,
		})
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory message store (data is lost on restart)")
		messageRepo = memory.NewMessageRepository()
	}

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized")

	// Select the LLM provider once at startup; misconfiguration falls back
	// to the stub so chat keeps answering.
	factory := llm.NewProviderFactory(cfg, capabilityRegistry, logger)
	provider := factory.SelectProvider()

	// Create services
	resolver := chat.NewIdentityResolver(cfg.PlaceholderIDs)
	chatService := chat.NewService(messageRepo, resolver, provider, cfg.HistoryTurns, logger)
	directory := session.NewDirectory(messageRepo, logger)
	adminService := session.NewAdminService(messageRepo, cfg.DeleteConfirmToken, cfg.PlaceholderIDs, logger)

	// Create handlers
	chatHandler := handler.NewChatHandler(chatService, logger)
	sessionHandler := handler.NewSessionHandler(directory, adminService, logger)
	statusHandler := handler.NewStatusHandler(provider.Name())

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health and status
	mux.HandleFunc("GET /health", statusHandler.Health)
	mux.HandleFunc("GET /api/status", statusHandler.Status)

	// Chat route
	mux.HandleFunc("POST /api/chat", chatHandler.Chat)

	// Session routes
	mux.HandleFunc("GET /api/sessions", sessionHandler.ListSessions)
	mux.HandleFunc("GET /api/sessions/stats", sessionHandler.SessionStats) // Must come before {id} routes
	mux.HandleFunc("GET /api/sessions/{id}/messages", sessionHandler.SessionMessages)
	mux.HandleFunc("GET /api/sessions/{id}/summary", sessionHandler.SessionSummary)
	mux.HandleFunc("DELETE /api/sessions", sessionHandler.BulkDeleteSessions)
	mux.HandleFunc("DELETE /api/sessions/batch", sessionHandler.BatchDeleteSessions)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.DeleteSession)

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - outermost so OPTIONS pre-flight requests are answered
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
