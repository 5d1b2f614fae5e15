// dslabs - interactive data structures practice server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/dslabs/internal/api"
	"github.com/ashureev/dslabs/internal/appstate"
	"github.com/ashureev/dslabs/internal/catalog"
	"github.com/ashureev/dslabs/internal/config"
	"github.com/ashureev/dslabs/internal/identity"
	"github.com/ashureev/dslabs/internal/middleware"
	"github.com/ashureev/dslabs/internal/realtime"
	"github.com/ashureev/dslabs/internal/shared"
	"github.com/ashureev/dslabs/internal/store"
	"github.com/ashureev/dslabs/internal/workspace"
	"github.com/ashureev/dslabs/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "db_path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(ctx, cfg.DBPath,
		store.WithLogger(logger),
		store.WithRetryPolicy(shared.RetryPolicy{
			MaxAttempts: cfg.DBRetry.MaxAttempts,
			BaseDelay:   cfg.DBRetry.BaseDelay,
		}),
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	slog.Info("Database connected")

	cat, err := catalog.LoadFile(ctx, cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "structures", len(cat.Structures()))

	// Initialize services.
	state := appstate.New(repo, logger)
	spaces := workspace.NewManager(cat, state,
		workspace.WithAnimationDelay(cfg.Visual.AnimationDelay),
		workspace.WithCapacity(cfg.Visual.Capacity),
		workspace.WithLogger(logger),
	)
	defer spaces.Close()
	sm := realtime.NewSessionManager()

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, state, cat, spaces, cfg)
	sessionHandler := api.NewSessionHandler(baseHandler)
	structureHandler := api.NewStructureHandler(baseHandler)
	exerciseHandler := api.NewExerciseHandler(baseHandler)
	wsHandler := realtime.NewHandler(spaces, sm, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	sessionHandler.RegisterRoutes(r)
	structureHandler.RegisterRoutes(r)
	exerciseHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/visual/{structure}", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSocket streams are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start idle sweeper.
	workspace.StartSweeper(ctx, spaces, repo, workspace.SweeperConfig{
		TTL:      cfg.Workspace.TTL,
		Interval: cfg.Workspace.SweepInterval,
		OnSweep:  sm.CloseSession,
	})

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
