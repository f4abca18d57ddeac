package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/Ufhano/Minimalist-App/internal/app"
	"github.com/Ufhano/Minimalist-App/internal/catalog"
	"github.com/Ufhano/Minimalist-App/internal/config"
	"github.com/Ufhano/Minimalist-App/internal/database"
	"github.com/Ufhano/Minimalist-App/internal/events"
	"github.com/Ufhano/Minimalist-App/internal/localstore"
	"github.com/Ufhano/Minimalist-App/internal/logging"
	"github.com/Ufhano/Minimalist-App/internal/recorder"
	"github.com/Ufhano/Minimalist-App/internal/remote"
	"github.com/Ufhano/Minimalist-App/internal/server"
	"github.com/Ufhano/Minimalist-App/internal/settings"
	"github.com/Ufhano/Minimalist-App/internal/stats"
	"github.com/Ufhano/Minimalist-App/internal/websocket"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupLocalCache(cfg *config.Config) *localstore.Store {
	cache, err := localstore.New(cfg.CachePath)
	if err != nil {
		slog.Error("Failed to open local cache", "path", cfg.CachePath, "error", err)
		os.Exit(1)
	}
	return cache
}

func runGracefulShutdown(srv *server.Server, appSvc *app.Service, hub *websocket.Hub, rec *recorder.Recorder, bus *events.Bus) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		appSvc.Stop()
		rec.Wait()
		hub.Stop()
		bus.Close()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	cache := setupLocalCache(cfg)
	defer func() { _ = cache.Close() }()

	store := database.NewStore(pool)
	breaker := remote.NewBreaker(store, clock)
	bus := events.NewBus()

	cat := catalog.New(breaker, cache, bus)
	rec := recorder.New(breaker, clock, bus)
	statsSvc := stats.NewService(breaker, clock, cfg.DailyGoalMinutes)
	settingsStore := settings.NewStore(cache, bus)

	appSvc := app.NewService(cat, rec, statsSvc, settingsStore, breaker, bus, clock)

	hub := websocket.NewHub(bus.Subscribe)

	srv := server.NewServer(cfg, appSvc, hub, store, cache)

	done := runGracefulShutdown(srv, appSvc, hub, rec, bus)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
