package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"

	"html2pdf/internal/config"
	"html2pdf/internal/converter"
	"html2pdf/internal/http/handlers"
	"html2pdf/internal/http/server"
	"html2pdf/internal/infra/chrome"
	"html2pdf/internal/infra/logging"
	"html2pdf/internal/infra/postgres"
	"html2pdf/internal/infra/stats"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	rec, closeStats := statsRecorder(cfg)
	defer closeStats()

	audit, closeAudit := auditRecorder(cfg)
	defer closeAudit()

	conv := converter.New(chrome.NewLauncher(cfg), rec, cfg.RenderTimeout())
	app := server.New(server.Deps{Config: cfg, Converter: conv, Audit: audit})

	logging.Info("Starting HTML to PDF service",
		"addr", cfg.Addr(),
		"docs", cfg.PublicURL()+"/api-docs",
		"browser_flags", cfg.Render.BrowserFlags,
	)

	idleConnsClosed := make(chan struct{})
	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// statsRecorder shares counters through Redis when configured.
func statsRecorder(cfg config.Config) (stats.Recorder, func()) {
	if cfg.Stats.RedisHost == "" {
		return stats.NewMemory(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Stats.RedisHost,
		DB:   cfg.Stats.RedisDB,
	})
	logging.Info("Using Redis for engine stats", "addr", cfg.Stats.RedisHost, "db", cfg.Stats.RedisDB)
	return stats.NewRedis(rdb, cfg.Stats.Key), func() { _ = rdb.Close() }
}

// auditRecorder returns nil when no audit database is configured or it
// cannot be prepared; conversions never depend on it.
func auditRecorder(cfg config.Config) (handlers.AuditRecorder, func()) {
	if !cfg.Audit.Postgres.Enabled() {
		return nil, func() {}
	}
	dsn, err := cfg.Audit.Postgres.DSN()
	if err != nil {
		logging.Error("Invalid audit database config", "error", err)
		return nil, func() {}
	}

	db := postgres.NewDB()
	repo := postgres.NewAuditRepository(db, dsn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		logging.Error("Audit journal disabled", "error", err)
		_ = db.Close()
		return nil, func() {}
	}
	return repo, func() { _ = db.Close() }
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint
	signal.Stop(sigint)

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
